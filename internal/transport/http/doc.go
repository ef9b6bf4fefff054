// Package http contains the HTTP handlers of the dashboard API. The
// handlers translate between the wire and the session service; all
// analytics live below the service boundary.
package http
