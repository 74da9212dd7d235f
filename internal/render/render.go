// Package render turns attendance rows into shareable images. Rendering
// itself is delegated to an external chart service; this package feeds
// it, stores the PNG in the object store, and hands back a link.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domerrors "github.com/campuskit/campus-wabot-go/internal/errors"
	"github.com/campuskit/campus-wabot-go/internal/logger"
	"github.com/campuskit/campus-wabot-go/internal/metrics"
	"github.com/campuskit/campus-wabot-go/internal/objstore"
	"github.com/campuskit/campus-wabot-go/internal/storage"
)

// AttendanceRender is one render request. Exactly one of DayRows or
// OverallRows is set, matching Mode.
type AttendanceRender struct {
	RegistrationNo string                         `json:"registration_no"`
	StudentName    string                         `json:"name"`
	CourseCode     string                         `json:"course_code"`
	Mode           string                         `json:"mode"` // "today" or "overall"
	Date           string                         `json:"date,omitempty"`
	DayRows        []storage.AttendanceRow        `json:"day_rows,omitempty"`
	OverallRows    []storage.OverallAttendanceRow `json:"overall_rows,omitempty"`
}

// Renderer produces a resolvable image URL for one attendance view.
type Renderer interface {
	RenderAttendance(ctx context.Context, req AttendanceRender) (string, error)
}

// HTTPRenderer posts render requests to the chart service and stores the
// returned PNG in the object store.
type HTTPRenderer struct {
	httpClient *http.Client
	serviceURL string
	store      objstore.Store
	keyPrefix  string
	presignTTL time.Duration
	log        *logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Config holds HTTPRenderer settings.
type Config struct {
	ServiceURL string
	Store      objstore.Store
	KeyPrefix  string
	PresignTTL time.Duration
	Timeout    time.Duration
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
}

// New creates an HTTPRenderer.
func New(cfg Config) (*HTTPRenderer, error) {
	if cfg.ServiceURL == "" {
		return nil, fmt.Errorf("render: service URL is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("render: object store is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	presignTTL := cfg.PresignTTL
	if presignTTL <= 0 {
		presignTTL = time.Hour
	}
	return &HTTPRenderer{
		httpClient: &http.Client{Timeout: timeout},
		serviceURL: cfg.ServiceURL,
		store:      cfg.Store,
		keyPrefix:  cfg.KeyPrefix,
		presignTTL: presignTTL,
		log:        cfg.Logger,
		metrics:    cfg.Metrics,
		now:        time.Now,
	}, nil
}

// RenderAttendance implements Renderer.
func (r *HTTPRenderer) RenderAttendance(ctx context.Context, req AttendanceRender) (string, error) {
	start := time.Now()
	url, err := r.render(ctx, req)
	if r.metrics != nil {
		r.metrics.RecordRender(req.Mode, time.Since(start).Seconds())
	}
	if err != nil {
		return "", err
	}
	if r.log != nil {
		r.log.WithModule("render").
			WithField("mode", req.Mode).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Debug("Attendance image rendered")
	}
	return url, nil
}

func (r *HTTPRenderer) render(ctx context.Context, req AttendanceRender) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("render: encode request: %w", err)
	}

	endpoint := r.serviceURL + "/render/attendance"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("render: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "image/png")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return "", domerrors.NewTransportError(endpoint, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", domerrors.NewTransportError(endpoint, resp.StatusCode,
			fmt.Errorf("unexpected chart service response"))
	}

	png, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("render: read image: %w", err)
	}
	if len(png) == 0 {
		return "", fmt.Errorf("render: chart service returned empty image")
	}

	key := objstore.AttendanceImageKey(r.keyPrefix, req.RegistrationNo, req.Mode, r.now())
	if err := r.store.Upload(ctx, key, bytes.NewReader(png), "image/png"); err != nil {
		return "", fmt.Errorf("render: store image: %w", err)
	}

	url, err := r.store.PresignGet(ctx, key, r.presignTTL)
	if err != nil {
		return "", fmt.Errorf("render: presign image: %w", err)
	}
	return url, nil
}
