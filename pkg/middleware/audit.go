package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionCreate      AuditAction = "create"
	AuditActionUpdate      AuditAction = "update"
	AuditActionDelete      AuditAction = "delete"
	AuditActionRecord      AuditAction = "record"
	AuditActionSendReceipt AuditAction = "send_receipt"
	AuditActionAcknowledge AuditAction = "acknowledge"
	AuditActionScan        AuditAction = "scan"
	AuditActionCharge      AuditAction = "charge"
	AuditActionConfirm     AuditAction = "confirm"
	AuditActionView        AuditAction = "view"
)

// Context keys for audit data
const (
	ContextKeyAuditResourceType = "audit_resource_type"
	ContextKeyAuditResourceID   = "audit_resource_id"
	ContextKeyAuditOldValues    = "audit_old_values"
	ContextKeyAuditNewValues    = "audit_new_values"
	ContextKeyAuditMetadata     = "audit_metadata"
	contextKeyAuditSkip         = "audit_skip"
)

const insertAuditLogSQL = `
	INSERT INTO audit_logs (
		id, user_id, user_email, user_role,
		action, resource_type, resource_id,
		ip_address, user_agent, request_id, trace_id,
		status_code, old_values, new_values, changes, metadata, created_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7,
		$8, $9, $10, $11,
		$12, $13, $14, $15, $16, $17
	)
`

// AuditEntry represents a single audit log entry
type AuditEntry struct {
	ID           string                 `json:"id"`
	UserID       *string                `json:"user_id,omitempty"`
	UserEmail    string                 `json:"user_email,omitempty"`
	UserRole     string                 `json:"user_role,omitempty"`
	Action       AuditAction            `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   *string                `json:"resource_id,omitempty"`
	IPAddress    string                 `json:"ip_address,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	TraceID      string                 `json:"trace_id,omitempty"`
	StatusCode   int                    `json:"status_code"`
	OldValues    map[string]interface{} `json:"old_values,omitempty"`
	NewValues    map[string]interface{} `json:"new_values,omitempty"`
	Changes      map[string]interface{} `json:"changes,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// AuditConfig holds configuration for the audit middleware
type AuditConfig struct {
	// DB is the PostgreSQL pool audit rows are written to; nil keeps entries in memory only
	DB *pgxpool.Pool
	// BufferSize is the size of the async audit buffer (default: 1000)
	BufferSize int
	// FlushInterval is how often to flush the buffer (default: 5 seconds)
	FlushInterval time.Duration
	// BatchSize is the maximum number of entries to insert in one batch (default: 100)
	BatchSize int
	// SkipPaths is a list of paths to skip auditing
	SkipPaths []string
	// SkipMethods is a list of HTTP methods to skip (default: GET, HEAD, OPTIONS)
	SkipMethods []string
	// ActionMapper maps HTTP method + path to audit action
	ActionMapper func(method, path string) AuditAction
	// ResourceExtractor extracts resource type and ID from path
	ResourceExtractor func(path string) (resourceType string, resourceID string)
	// EnableRequestBody captures the JSON request body as new values
	EnableRequestBody bool
	// MaxBodySize limits the size of captured body (default: 10KB)
	MaxBodySize int
	// SensitiveFields are field names that should be masked
	SensitiveFields []string
}

// DefaultAuditConfig returns default configuration
func DefaultAuditConfig(db *pgxpool.Pool) *AuditConfig {
	return &AuditConfig{
		DB:                db,
		BufferSize:        1000,
		FlushInterval:     5 * time.Second,
		BatchSize:         100,
		SkipPaths:         []string{"/health", "/ready", "/metrics"},
		SkipMethods:       []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		ActionMapper:      defaultActionMapper,
		ResourceExtractor: defaultResourceExtractor,
		EnableRequestBody: true,
		MaxBodySize:       10 * 1024,
		SensitiveFields:   []string{"password", "token", "secret", "api_key", "card", "client_secret"},
	}
}

// AuditLogger handles async audit logging
type AuditLogger struct {
	config    *AuditConfig
	buffer    chan *AuditEntry
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	log       *logger.Logger

	dropped int64
	mu      sync.Mutex

	testMode    bool
	testEntries []*AuditEntry
	testMu      sync.Mutex
}

// NewAuditLogger creates a new audit logger and starts its flush worker
func NewAuditLogger(config *AuditConfig) *AuditLogger {
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 5 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = 10 * 1024
	}

	ctx, cancel := context.WithCancel(context.Background())

	al := &AuditLogger{
		config: config,
		buffer: make(chan *AuditEntry, config.BufferSize),
		ctx:    ctx,
		cancel: cancel,
		log:    logger.Get().Component("audit"),
	}

	al.wg.Add(1)
	go al.worker()

	return al
}

// Log adds an audit entry to the buffer without blocking. Entries are dropped when the buffer is full.
func (al *AuditLogger) Log(entry *AuditEntry) {
	select {
	case al.buffer <- entry:
	default:
		al.mu.Lock()
		al.dropped++
		al.mu.Unlock()
		al.log.Warn("audit buffer full, entry dropped",
			zap.String("action", string(entry.Action)),
			zap.String("resource_type", entry.ResourceType),
		)
	}
}

// Dropped returns how many entries were discarded because the buffer was full
func (al *AuditLogger) Dropped() int64 {
	al.mu.Lock()
	defer al.mu.Unlock()
	return al.dropped
}

// Close flushes pending entries and stops the worker
func (al *AuditLogger) Close() error {
	al.closeOnce.Do(func() {
		close(al.buffer)
		al.wg.Wait()
		al.cancel()
	})
	return nil
}

// SetTestMode enables test mode which collects entries instead of writing to DB
func (al *AuditLogger) SetTestMode(enabled bool) {
	al.testMu.Lock()
	defer al.testMu.Unlock()
	al.testMode = enabled
	if enabled {
		al.testEntries = make([]*AuditEntry, 0)
	}
}

// GetTestEntries returns collected test entries (only in test mode)
func (al *AuditLogger) GetTestEntries() []*AuditEntry {
	al.testMu.Lock()
	defer al.testMu.Unlock()
	result := make([]*AuditEntry, len(al.testEntries))
	copy(result, al.testEntries)
	return result
}

func (al *AuditLogger) worker() {
	defer al.wg.Done()

	ticker := time.NewTicker(al.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]*AuditEntry, 0, al.config.BatchSize)

	for {
		select {
		case entry, ok := <-al.buffer:
			if !ok {
				al.flush(batch)
				return
			}
			batch = append(batch, entry)
			if len(batch) >= al.config.BatchSize {
				al.flush(batch)
				batch = make([]*AuditEntry, 0, al.config.BatchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				al.flush(batch)
				batch = make([]*AuditEntry, 0, al.config.BatchSize)
			}
		}
	}
}

// flush writes a batch of entries to audit_logs in a single round trip
func (al *AuditLogger) flush(entries []*AuditEntry) {
	if len(entries) == 0 {
		return
	}

	al.testMu.Lock()
	if al.testMode {
		al.testEntries = append(al.testEntries, entries...)
		al.testMu.Unlock()
		return
	}
	al.testMu.Unlock()

	if al.config.DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	for _, entry := range entries {
		batch.Queue(insertAuditLogSQL,
			entry.ID, entry.UserID, entry.UserEmail, entry.UserRole,
			string(entry.Action), entry.ResourceType, entry.ResourceID,
			entry.IPAddress, entry.UserAgent, entry.RequestID, entry.TraceID,
			entry.StatusCode,
			jsonOrNil(entry.OldValues), jsonOrNil(entry.NewValues), jsonOrNil(entry.Changes),
			jsonOrEmpty(entry.Metadata), entry.CreatedAt,
		)
	}

	results := al.config.DB.SendBatch(ctx, batch)
	defer results.Close()

	failed := 0
	for range entries {
		if _, err := results.Exec(); err != nil {
			failed++
		}
	}
	if failed > 0 {
		al.log.Error("failed to write audit entries",
			zap.Int("failed", failed),
			zap.Int("batch_size", len(entries)),
		)
	}
}

func jsonOrNil(m map[string]interface{}) []byte {
	if len(m) == 0 {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return b
}

func jsonOrEmpty(m map[string]interface{}) []byte {
	if b := jsonOrNil(m); b != nil {
		return b
	}
	return []byte("{}")
}

// AuditMiddleware records every mutating request once the handler has run
func AuditMiddleware(al *AuditLogger) gin.HandlerFunc {
	config := al.config
	return func(c *gin.Context) {
		for _, path := range config.SkipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}
		for _, method := range config.SkipMethods {
			if c.Request.Method == method {
				c.Next()
				return
			}
		}

		var requestBody map[string]interface{}
		if config.EnableRequestBody && c.Request.Body != nil {
			bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, int64(config.MaxBodySize)))
			if err == nil && len(bodyBytes) > 0 {
				c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
				_ = json.Unmarshal(bodyBytes, &requestBody)
				requestBody = maskSensitiveFields(requestBody, config.SensitiveFields)
			}
		}

		startTime := time.Now().UTC()

		c.Next()

		if skip, exists := c.Get(contextKeyAuditSkip); exists {
			if b, ok := skip.(bool); ok && b {
				return
			}
		}

		entry := &AuditEntry{
			ID:         uuid.New().String(),
			StatusCode: c.Writer.Status(),
			CreatedAt:  startTime,
		}

		if userID, ok := GetUserID(c); ok && userID != "" {
			entry.UserID = &userID
		}
		if email, ok := GetEmail(c); ok {
			entry.UserEmail = email
		}
		if role, ok := GetRole(c); ok {
			entry.UserRole = role
		}

		if config.ActionMapper != nil {
			entry.Action = config.ActionMapper(c.Request.Method, c.Request.URL.Path)
		}
		if config.ResourceExtractor != nil {
			resourceType, resourceID := config.ResourceExtractor(c.Request.URL.Path)
			entry.ResourceType = resourceType
			if resourceID != "" {
				entry.ResourceID = &resourceID
			}
		}

		// handlers may refine what the path alone tells us
		if rt, exists := c.Get(ContextKeyAuditResourceType); exists {
			if s, ok := rt.(string); ok {
				entry.ResourceType = s
			}
		}
		if rid, exists := c.Get(ContextKeyAuditResourceID); exists {
			if s, ok := rid.(string); ok && s != "" {
				entry.ResourceID = &s
			}
		}
		if v, exists := c.Get(ContextKeyAuditOldValues); exists {
			entry.OldValues, _ = v.(map[string]interface{})
		}
		if v, exists := c.Get(ContextKeyAuditNewValues); exists {
			entry.NewValues, _ = v.(map[string]interface{})
		}
		if v, exists := c.Get(ContextKeyAuditMetadata); exists {
			entry.Metadata, _ = v.(map[string]interface{})
		}

		if entry.OldValues != nil && entry.NewValues != nil {
			entry.Changes = computeChanges(entry.OldValues, entry.NewValues)
		}
		if requestBody != nil && entry.NewValues == nil {
			entry.NewValues = requestBody
		}

		entry.IPAddress = getClientIP(c)
		entry.UserAgent = c.GetHeader("User-Agent")
		entry.RequestID = GetRequestID(c)
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			entry.TraceID = sc.TraceID().String()
		}

		al.Log(entry)
	}
}

// defaultActionMapper maps method and path to an audit action.
// Sub-resource verbs win over the method based mapping.
func defaultActionMapper(method, path string) AuditAction {
	p := strings.ToLower(strings.TrimRight(path, "/"))

	switch {
	case strings.HasSuffix(p, "/confirm"):
		return AuditActionConfirm
	case strings.HasSuffix(p, "/payment-intent"):
		return AuditActionCharge
	case strings.HasSuffix(p, "/record"):
		return AuditActionRecord
	case strings.HasSuffix(p, "/send-receipt"):
		return AuditActionSendReceipt
	case strings.HasSuffix(p, "/acknowledge"):
		return AuditActionAcknowledge
	case strings.HasSuffix(p, "/alerts/scan"):
		return AuditActionScan
	}

	switch method {
	case http.MethodPost:
		return AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return AuditActionUpdate
	case http.MethodDelete:
		return AuditActionDelete
	default:
		return AuditActionView
	}
}

// defaultResourceExtractor extracts resource type and ID from path
// Example: /api/rentpayments/<uuid>/record -> ("rentpayment", "<uuid>")
func defaultResourceExtractor(path string) (resourceType string, resourceID string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	startIdx := -1
	for i, part := range parts {
		if part == "api" || part == "" {
			continue
		}
		startIdx = i
		break
	}
	if startIdx < 0 {
		return "unknown", ""
	}

	resourceType = strings.TrimSuffix(parts[startIdx], "s")

	if startIdx+1 < len(parts) && isValidID(parts[startIdx+1]) {
		resourceID = parts[startIdx+1]
	}
	return resourceType, resourceID
}

// isValidID checks if a string looks like a valid ID
func isValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// getClientIP extracts the client IP address
func getClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}

// maskSensitiveFields masks sensitive data in a map
func maskSensitiveFields(data map[string]interface{}, sensitiveFields []string) map[string]interface{} {
	if data == nil {
		return nil
	}

	result := make(map[string]interface{}, len(data))
	for k, v := range data {
		lowKey := strings.ToLower(k)
		masked := false
		for _, sf := range sensitiveFields {
			if strings.Contains(lowKey, strings.ToLower(sf)) {
				result[k] = "[REDACTED]"
				masked = true
				break
			}
		}
		if masked {
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			result[k] = maskSensitiveFields(nested, sensitiveFields)
		} else {
			result[k] = v
		}
	}
	return result
}

// computeChanges computes the differences between old and new values
func computeChanges(oldVals, newVals map[string]interface{}) map[string]interface{} {
	changes := make(map[string]interface{})

	for k, newV := range newVals {
		oldV, exists := oldVals[k]
		if !exists || !jsonEqual(oldV, newV) {
			changes[k] = map[string]interface{}{"old": oldV, "new": newV}
		}
	}
	for k, oldV := range oldVals {
		if _, exists := newVals[k]; !exists {
			changes[k] = map[string]interface{}{"old": oldV, "new": nil}
		}
	}
	return changes
}

func jsonEqual(a, b interface{}) bool {
	aJSON, err1 := json.Marshal(a)
	bJSON, err2 := json.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return bytes.Equal(aJSON, bJSON)
}

// SetAuditResourceID sets the resource ID for audit logging
func SetAuditResourceID(c *gin.Context, resourceID string) {
	c.Set(ContextKeyAuditResourceID, resourceID)
}

// SetAuditResourceType overrides the resource type derived from the path
func SetAuditResourceType(c *gin.Context, resourceType string) {
	c.Set(ContextKeyAuditResourceType, resourceType)
}

// SetAuditOldValues sets the values before an update or delete
func SetAuditOldValues(c *gin.Context, oldValues map[string]interface{}) {
	c.Set(ContextKeyAuditOldValues, oldValues)
}

// SetAuditNewValues sets the values after a create or update
func SetAuditNewValues(c *gin.Context, newValues map[string]interface{}) {
	c.Set(ContextKeyAuditNewValues, newValues)
}

// SetAuditMetadata sets additional metadata for audit logging
func SetAuditMetadata(c *gin.Context, metadata map[string]interface{}) {
	c.Set(ContextKeyAuditMetadata, metadata)
}

// SkipAudit marks the current request to skip audit logging
func SkipAudit(c *gin.Context) {
	c.Set(contextKeyAuditSkip, true)
}
