package shared

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"fieldpay/internal/domain/auth"
	"fieldpay/internal/transport/http/middleware"
)

type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

type IdempotencyStore interface {
	Check(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error
}

// Audit records an audit event for the request. Failures are logged and
// never fail the request.
func Audit(r *http.Request, recorder AuditRecorder, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if recorder == nil {
		return
	}
	if err := recorder.Record(r.Context(), user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), middleware.ClientIP(r), before, after); err != nil {
		log.Printf("audit %s failed: %v", action, err)
	}
}
