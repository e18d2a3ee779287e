// Package http provides HTTP handlers and middleware for the club room
// reservation API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     The token is also surfaced via the `X-Session-Token` header and a
//     `session_token` cookie.
//   - DELETE /sessions/current: revokes the caller's session token extracted
//     from the Authorization header or session cookie.
//   - POST /users: public signup. GET /users and PUT /users/{id} are
//     administrator controlled account management endpoints.
//   - GET /availability?date=&group=: the 32 half-hour slot statuses for one
//     day and resource group. GET /availability/slot additionally returns the
//     record responsible for a single slot's status. Both are public.
//   - GET /reservations?date=&group=: public day listing. With ?mine=1 the
//     endpoint instead returns the authenticated caller's reservations.
//     POST /reservations submits a request; POST /reservations/{id}/approve,
//     /reject, and /cancel drive the status workflow.
//   - GET/POST /blackouts and PUT/DELETE /blackouts/{id}: administrator
//     managed recurring blocked windows.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
