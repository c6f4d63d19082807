package learning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/phrazzld/study-runner/internal/study"
)

// maxBodyBytes bounds how much of a gateway response is read.
const maxBodyBytes = 4 << 20

// Config configures a Client.
type Config struct {
	BaseURL string
	// Timeout bounds each gateway request.
	Timeout time.Duration
	// ProgressInterval is the media time between two video progress reports.
	ProgressInterval time.Duration
	// RequestsPerSecond caps the request rate of each identity; zero means
	// no cap. Burst is the number of requests allowed at once.
	RequestsPerSecond float64
	Burst             int
}

// Client creates gateway sessions. It is safe for concurrent use.
type Client struct {
	baseURL          *url.URL
	timeout          time.Duration
	progressInterval time.Duration
	cookies          *CookieCache
	limiters         *limiterCache
	logger           *slog.Logger

	// wait pauses playback between progress reports.
	wait func(ctx context.Context, d time.Duration) error
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config, cookies *CookieCache, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid gateway base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid gateway base URL %q: scheme must be http or https", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("gateway timeout must be positive")
	}
	if cfg.ProgressInterval <= 0 {
		return nil, errors.New("progress interval must be positive")
	}
	if cfg.RequestsPerSecond < 0 {
		return nil, errors.New("request rate must not be negative")
	}
	if cookies == nil {
		cookies = NewCookieCache()
	}

	return &Client{
		baseURL:          base,
		timeout:          cfg.Timeout,
		progressInterval: cfg.ProgressInterval,
		cookies:          cookies,
		limiters:         newLimiterCache(cfg.RequestsPerSecond, cfg.Burst),
		logger:           logger.With("component", "learning_gateway"),
		wait:             sleep,
	}, nil
}

// Connect implements study.Connector.
func (c *Client) Connect(cred study.Credential) (*study.Connection, error) {
	jar, err := c.cookies.Jar(cred.Identity)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	s := &session{
		client:  c,
		http:    &http.Client{Jar: jar, Timeout: c.timeout},
		limiter: c.limiters.get(cred.Identity),
		cred:    cred,
	}
	return &study.Connection{Session: s, Video: s, Document: s}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// session is one credential's conversation with the gateway.
type session struct {
	client  *Client
	http    *http.Client
	limiter *rate.Limiter
	cred    study.Credential
}

type loginResponse struct {
	Status bool   `json:"status"`
	Msg    string `json:"msg"`
}

type courseDTO struct {
	CourseID string `json:"courseId"`
	ClazzID  string `json:"clazzId"`
	CPI      string `json:"cpi"`
	Title    string `json:"title"`
}

type chaptersResponse struct {
	Points []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"points"`
}

type jobsResponse struct {
	Jobs []struct {
		JobID    string  `json:"jobid"`
		Type     string  `json:"type"`
		Title    string  `json:"title"`
		ObjectID string  `json:"objectid"`
		Duration float64 `json:"duration"`
	} `json:"jobs"`
	Info map[string]string `json:"info"`
}

func (s *session) Authenticate(ctx context.Context) (study.AuthResult, error) {
	form := url.Values{}
	form.Set("username", s.cred.Identity)
	form.Set("password", s.cred.Secret)

	var resp loginResponse
	if err := s.do(ctx, http.MethodPost, "/login", nil, form, &resp); err != nil {
		return study.AuthResult{}, err
	}
	if !resp.Status {
		// Cookies from a refused login are never reused.
		s.client.cookies.Forget(s.cred.Identity)
		s.client.logger.Debug("login refused, dropped cookie jar")
	}
	return study.AuthResult{OK: resp.Status, Reason: resp.Msg}, nil
}

func (s *session) ListCourses(ctx context.Context) ([]study.Course, error) {
	var resp []courseDTO
	if err := s.do(ctx, http.MethodGet, "/courses", nil, nil, &resp); err != nil {
		return nil, err
	}

	courses := make([]study.Course, 0, len(resp))
	for _, c := range resp {
		courses = append(courses, study.Course{ID: c.CourseID, ClassID: c.ClazzID, CPI: c.CPI, Title: c.Title})
	}
	return courses, nil
}

func (s *session) ListChapters(ctx context.Context, course study.Course) ([]study.Chapter, error) {
	var resp chaptersResponse
	path := "/courses/" + url.PathEscape(course.ID) + "/chapters"
	if err := s.do(ctx, http.MethodGet, path, courseQuery(course), nil, &resp); err != nil {
		return nil, err
	}

	chapters := make([]study.Chapter, 0, len(resp.Points))
	for _, p := range resp.Points {
		chapters = append(chapters, study.Chapter{ID: p.ID, Title: p.Title})
	}
	return chapters, nil
}

func (s *session) ListWorkItems(
	ctx context.Context,
	course study.Course,
	chapter study.Chapter,
) ([]study.WorkItem, study.ItemContext, error) {
	var resp jobsResponse
	path := "/courses/" + url.PathEscape(course.ID) + "/chapters/" + url.PathEscape(chapter.ID) + "/jobs"
	if err := s.do(ctx, http.MethodGet, path, courseQuery(course), nil, &resp); err != nil {
		return nil, nil, err
	}

	items := make([]study.WorkItem, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		items = append(items, study.WorkItem{
			ID:       j.JobID,
			Type:     study.ParseItemType(j.Type),
			Title:    j.Title,
			ObjectID: j.ObjectID,
			Duration: time.Duration(j.Duration * float64(time.Second)),
		})
	}
	return items, study.ItemContext(resp.Info), nil
}

// Play reports progress every progressInterval of media time, waiting
// progressInterval/speed of wall-clock time between reports, and finishes
// with a report at the full duration.
func (s *session) Play(
	ctx context.Context,
	course study.Course,
	item study.WorkItem,
	info study.ItemContext,
	speed int,
) error {
	if speed < 1 {
		speed = 1
	}
	step := s.client.progressInterval
	pause := step / time.Duration(speed)
	logger := s.client.logger.With("course_id", course.ID, "item_id", item.ID)

	for position := time.Duration(0); position < item.Duration; position += step {
		if err := s.reportProgress(ctx, course, item, info, position, false); err != nil {
			return err
		}
		if err := s.client.wait(ctx, pause); err != nil {
			return err
		}
	}

	if err := s.reportProgress(ctx, course, item, info, item.Duration, true); err != nil {
		return err
	}
	logger.Debug("video finished", "duration", item.Duration, "speed", speed)
	return nil
}

func (s *session) reportProgress(
	ctx context.Context,
	course study.Course,
	item study.WorkItem,
	info study.ItemContext,
	position time.Duration,
	finished bool,
) error {
	form := url.Values{}
	for k, v := range info {
		form.Set(k, v)
	}
	form.Set("courseId", course.ID)
	form.Set("clazzId", course.ClassID)
	form.Set("objectId", item.ObjectID)
	form.Set("playingTime", fmt.Sprintf("%d", int(position.Seconds())))
	form.Set("duration", fmt.Sprintf("%d", int(item.Duration.Seconds())))
	if finished {
		form.Set("isdrag", "4")
	} else {
		form.Set("isdrag", "0")
	}

	return s.do(ctx, http.MethodPost, "/videos/"+url.PathEscape(item.ID)+"/progress", nil, form, nil)
}

func (s *session) Read(ctx context.Context, course study.Course, item study.WorkItem) error {
	form := url.Values{}
	form.Set("courseId", course.ID)
	form.Set("clazzId", course.ClassID)
	form.Set("objectId", item.ObjectID)

	return s.do(ctx, http.MethodPost, "/documents/"+url.PathEscape(item.ID)+"/read", nil, form, nil)
}

func courseQuery(course study.Course) url.Values {
	q := url.Values{}
	q.Set("clazzId", course.ClassID)
	q.Set("cpi", course.CPI)
	return q
}

// do sends one gateway request. A non-nil form is sent url-encoded; a non-nil
// out receives the decoded JSON body.
func (s *session) do(ctx context.Context, method, path string, query, form url.Values, out interface{}) error {
	u := *s.client.baseURL
	u.Path += path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
