// Package learning talks to the learning platform gateway over HTTP and
// implements the study collaborator interfaces on top of it.
//
// Gateway endpoints (all JSON responses):
//
//	POST /login                                   form username, password
//	GET  /courses
//	GET  /courses/{courseId}/chapters             ?clazzId=&cpi=
//	GET  /courses/{courseId}/chapters/{id}/jobs   ?clazzId=&cpi=
//	POST /videos/{jobId}/progress                 form playingTime, duration, ...
//	POST /documents/{jobId}/read                  form courseId, clazzId, ...
//
// Session cookies are kept per identity in a CookieCache so that a second job
// for the same account reuses the platform session of the first.
package learning
