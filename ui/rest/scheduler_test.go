package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	domainScheduler "github.com/l0lsec/PodInsights/domains/scheduler"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	"github.com/l0lsec/PodInsights/scheduler/domain/common"
	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
	"github.com/l0lsec/PodInsights/scheduler/domain/slots"
	"github.com/l0lsec/PodInsights/ui/rest/middleware"
)

// fakeSchedulerService implements ISchedulerUsecase with canned responses so
// the handlers can be exercised without a database behind them.
type fakeSchedulerService struct {
	enqueued   *domainScheduler.EnqueueRequest
	enqueueErr error
	previewAt  time.Time
	previewErr error
	updatedID  string
	updatedAt  time.Time
	updateOK   bool
	reorderIDs []string
	reorderOK  bool
	movedIDs   []string
	movedTo    queue.Position
	moveOK     bool
	retryErr   error
}

func (f *fakeSchedulerService) Enqueue(ctx context.Context, request domainScheduler.EnqueueRequest) (queue.ScheduledPost, error) {
	f.enqueued = &request
	if f.enqueueErr != nil {
		return queue.ScheduledPost{}, f.enqueueErr
	}
	return queue.ScheduledPost{
		ID:           "post-1",
		Content:      queue.ContentRef{Type: queue.PostType(request.PostType), ID: request.ContentID},
		Platform:     request.Platform,
		ScheduledFor: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Status:       queue.StatusPending,
	}, nil
}

func (f *fakeSchedulerService) Get(ctx context.Context, id string) (queue.ScheduledPost, error) {
	return queue.ScheduledPost{ID: id, Status: queue.StatusPending}, nil
}

func (f *fakeSchedulerService) List(ctx context.Context, status queue.Status, platform string) ([]queue.ScheduledPost, error) {
	return nil, nil
}

func (f *fakeSchedulerService) PreviewNextSlot(ctx context.Context, platform string) (time.Time, error) {
	return f.previewAt, f.previewErr
}

func (f *fakeSchedulerService) UpdateTime(ctx context.Context, id string, scheduledFor time.Time) (bool, error) {
	f.updatedID = id
	f.updatedAt = scheduledFor
	return f.updateOK, nil
}

func (f *fakeSchedulerService) Cancel(ctx context.Context, id string) (bool, error) {
	return true, nil
}

func (f *fakeSchedulerService) CancelBySource(ctx context.Context, request domainScheduler.CancelBySourceRequest) (bool, error) {
	return true, nil
}

func (f *fakeSchedulerService) Retry(ctx context.Context, id string) (queue.ScheduledPost, error) {
	if f.retryErr != nil {
		return queue.ScheduledPost{}, f.retryErr
	}
	return queue.ScheduledPost{ID: id, Status: queue.StatusPending}, nil
}

func (f *fakeSchedulerService) PostNow(ctx context.Context, id string) (queue.ScheduledPost, error) {
	return queue.ScheduledPost{ID: id, Status: queue.StatusPosted}, nil
}

func (f *fakeSchedulerService) Delete(ctx context.Context, id string) error {
	return nil
}

func (f *fakeSchedulerService) DeleteBulk(ctx context.Context, ids []string) (int64, error) {
	return int64(len(ids)), nil
}

func (f *fakeSchedulerService) ClearPending(ctx context.Context) (int64, error) {
	return 0, nil
}

func (f *fakeSchedulerService) Redistribute(ctx context.Context, platform string) (int, error) {
	return 3, nil
}

func (f *fakeSchedulerService) Reorder(ctx context.Context, postIDs []string) (bool, error) {
	f.reorderIDs = postIDs
	return f.reorderOK, nil
}

func (f *fakeSchedulerService) MoveToPosition(ctx context.Context, postIDs []string, position queue.Position) (bool, error) {
	f.movedIDs = postIDs
	f.movedTo = position
	return f.moveOK, nil
}

func (f *fakeSchedulerService) ListSlots(ctx context.Context) ([]slots.TimeSlot, error) {
	return nil, nil
}

func (f *fakeSchedulerService) AddSlot(ctx context.Context, request domainScheduler.SlotRequest) (slots.TimeSlot, error) {
	return slots.TimeSlot{ID: "slot-1", DayOfWeek: request.DayOfWeek, TimeOfDay: request.TimeOfDay, Enabled: true}, nil
}

func (f *fakeSchedulerService) UpdateSlot(ctx context.Context, id string, update slots.SlotUpdate) error {
	return nil
}

func (f *fakeSchedulerService) DeleteSlot(ctx context.Context, id string) error {
	return nil
}

func (f *fakeSchedulerService) GetLimit(ctx context.Context, platform string) (slots.PlatformLimit, error) {
	return slots.PlatformLimit{Platform: platform}, nil
}

func (f *fakeSchedulerService) SetLimit(ctx context.Context, platform string, maxPostsPerDay int) (slots.PlatformLimit, error) {
	return slots.PlatformLimit{Platform: platform, MaxPostsPerDay: maxPostsPerDay}, nil
}

func (f *fakeSchedulerService) ListLimits(ctx context.Context) ([]slots.PlatformLimit, error) {
	return nil, nil
}

func (f *fakeSchedulerService) DefaultPlatform(ctx context.Context) (string, error) {
	return "linkedin", nil
}

func (f *fakeSchedulerService) SetDefaultPlatform(ctx context.Context, platform string) error {
	return nil
}

func (f *fakeSchedulerService) EnsureDefaults(ctx context.Context) error {
	return nil
}

// restEnvelope mirrors utils.ResponseData on the wire. Results stays raw so
// each test can decode the shape it expects.
type restEnvelope struct {
	Status  int             `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Results json.RawMessage `json:"results"`
}

func performJSON(t *testing.T, app *fiber.App, method, target, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) restEnvelope {
	t.Helper()
	defer resp.Body.Close()

	var envelope restEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	return envelope
}

func TestScheduleEnqueue(t *testing.T) {
	app := fiber.New()
	service := &fakeSchedulerService{}
	InitRestScheduler(app, service)

	body := `{"post_type":"social","content_id":"sp-1","platform":"linkedin","scheduled_for":"2026-03-01T09:30:00Z"}`
	resp := performJSON(t, app, http.MethodPost, "/schedule", body)

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d, body=%s", resp.StatusCode, string(b))
	}

	envelope := decodeEnvelope(t, resp)
	if envelope.Code != "SUCCESS" || envelope.Message != "Success schedule post" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}

	var post struct {
		ID       string `json:"id"`
		Platform string `json:"platform"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(envelope.Results, &post); err != nil {
		t.Fatalf("failed to decode results: %v", err)
	}
	if post.ID != "post-1" || post.Platform != "linkedin" || post.Status != "pending" {
		t.Fatalf("unexpected post in results: %+v", post)
	}

	if service.enqueued == nil {
		t.Fatal("expected Enqueue to be called")
	}
	if service.enqueued.PostType != "social" || service.enqueued.ContentID != "sp-1" {
		t.Fatalf("unexpected enqueue request: %+v", service.enqueued)
	}
	if service.enqueued.ScheduledFor != "2026-03-01T09:30:00Z" {
		t.Fatalf("expected raw timestamp to pass through, got %q", service.enqueued.ScheduledFor)
	}
}

func TestSchedulePreviewNextSlot(t *testing.T) {
	app := fiber.New()
	service := &fakeSchedulerService{previewAt: time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)}
	InitRestScheduler(app, service)

	resp := performJSON(t, app, http.MethodGet, "/schedule/preview?platform=threads", "")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	// Message doubles as a route-order guard: if /schedule/:id matched
	// first, this would come back as a single-post fetch for id "preview".
	envelope := decodeEnvelope(t, resp)
	if envelope.Code != "SUCCESS" || envelope.Message != "Success preview next slot" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}

	var results struct {
		NextSlot time.Time `json:"next_slot"`
	}
	if err := json.Unmarshal(envelope.Results, &results); err != nil {
		t.Fatalf("failed to decode results: %v", err)
	}
	if !results.NextSlot.Equal(service.previewAt) {
		t.Fatalf("expected next_slot %v, got %v", service.previewAt, results.NextSlot)
	}
}

func TestSchedulePreviewWithoutSlots(t *testing.T) {
	app := fiber.New()
	service := &fakeSchedulerService{previewErr: common.ErrNoSlotsConfigured}
	InitRestScheduler(app, service)

	resp := performJSON(t, app, http.MethodGet, "/schedule/preview", "")

	// An empty slot table is an answer, not a failure.
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	if envelope.Code != "SUCCESS" || envelope.Message != common.ErrNoSlotsConfigured.Error() {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
	if len(envelope.Results) != 0 {
		t.Fatalf("expected empty results, got %s", string(envelope.Results))
	}
}

func TestScheduleUpdateTimeRequiresTimestamp(t *testing.T) {
	app := fiber.New()
	service := &fakeSchedulerService{updateOK: true}
	InitRestScheduler(app, service)

	resp := performJSON(t, app, http.MethodPut, "/schedule/post-1/time", `{}`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope.Code != "BAD_REQUEST" || envelope.Message != "scheduled_for is required" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}

	resp = performJSON(t, app, http.MethodPut, "/schedule/post-1/time", `{"scheduled_for":"next tuesday"}`)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	envelope = decodeEnvelope(t, resp)
	if envelope.Code != "BAD_REQUEST" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}

	if service.updatedID != "" {
		t.Fatalf("service must not be called on invalid input, got id %q", service.updatedID)
	}
}

func TestScheduleUpdateTime(t *testing.T) {
	app := fiber.New()
	service := &fakeSchedulerService{updateOK: true}
	InitRestScheduler(app, service)

	resp := performJSON(t, app, http.MethodPut, "/schedule/post-1/time", `{"scheduled_for":"2026-03-05T08:00:00Z"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope.Code != "SUCCESS" || envelope.Message != "Success update post time" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}

	if service.updatedID != "post-1" {
		t.Fatalf("expected id 'post-1', got %q", service.updatedID)
	}
	want := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)
	if !service.updatedAt.Equal(want) {
		t.Fatalf("expected parsed time %v, got %v", want, service.updatedAt)
	}
}

func TestScheduleUpdateTimeConflict(t *testing.T) {
	app := fiber.New()
	service := &fakeSchedulerService{updateOK: false}
	InitRestScheduler(app, service)

	resp := performJSON(t, app, http.MethodPut, "/schedule/post-1/time", `{"scheduled_for":"2026-03-05T08:00:00Z"}`)

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope.Code != "CONFLICT" || envelope.Message != "only pending posts can be rescheduled" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
}

func TestScheduleReorderConflict(t *testing.T) {
	app := fiber.New()
	service := &fakeSchedulerService{reorderOK: false}
	InitRestScheduler(app, service)

	resp := performJSON(t, app, http.MethodPost, "/schedule/reorder", `{"post_ids":["b","a","c"]}`)

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope.Code != "CONFLICT" || envelope.Message != "queue changed while reordering, reload and retry" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}

	if len(service.reorderIDs) != 3 || service.reorderIDs[0] != "b" || service.reorderIDs[2] != "c" {
		t.Fatalf("expected ids [b a c] in request order, got %v", service.reorderIDs)
	}
}

func TestScheduleMoveToTop(t *testing.T) {
	app := fiber.New()
	service := &fakeSchedulerService{moveOK: true}
	InitRestScheduler(app, service)

	resp := performJSON(t, app, http.MethodPost, "/schedule/move", `{"post_ids":["a","b"],"position":"top"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope.Code != "SUCCESS" || envelope.Message != "Success move posts" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}

	if service.movedTo != queue.PositionTop {
		t.Fatalf("expected position top, got %q", service.movedTo)
	}
	if len(service.movedIDs) != 2 {
		t.Fatalf("expected 2 ids, got %v", service.movedIDs)
	}
}

func TestScheduleRetryValidationError(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.Recovery())
	service := &fakeSchedulerService{retryErr: pkgError.ValidationError("only failed posts can be retried")}
	InitRestScheduler(app, service)

	resp := performJSON(t, app, http.MethodPost, "/schedule/post-1/retry", "")

	// Typed errors panic through the handler and keep their status code.
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope.Status != 400 || envelope.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
	if envelope.Message != "only failed posts can be retried" {
		t.Fatalf("unexpected message: %q", envelope.Message)
	}
}
