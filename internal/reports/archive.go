package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/andresuchdata/stockledger/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxReports caps the archive; older entries are evicted on save.
const MaxReports = 50

const (
	indexKey      = "reports/index.json"
	contentPrefix = "reports/content/"
)

// Report is the archived metadata of one generated document. HasContent is
// false when the payload could not be stored.
type Report struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Filename   string    `json:"filename"`
	Mime       string    `json:"mime"`
	Date       time.Time `json:"date"`
	Size       int64     `json:"size"`
	HasContent bool      `json:"has_content"`
}

// Archive keeps a newest-first list of generated reports in object storage.
type Archive struct {
	mu    sync.Mutex
	store storage.ObjectStorage
	now   func() time.Time
}

func NewArchive(store storage.ObjectStorage) *Archive {
	return &Archive{store: store, now: time.Now}
}

// SaveReport prepends a report to the archive. When the backend refuses the
// payload the report is kept as metadata only, and if even the index does not
// fit the oldest entries are dropped until it does.
func (a *Archive) SaveReport(ctx context.Context, title, filename, mime string, content []byte) (Report, domain.OperationResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, err := a.load(ctx)
	if err != nil {
		return Report{}, domain.OperationResult{Message: "Failed to save report log."}, err
	}

	r := Report{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(title),
		Filename:   filename,
		Mime:       mime,
		Date:       a.now(),
		Size:       int64(len(content)),
		HasContent: true,
	}

	metadataOnly := false
	if err := a.store.PutObject(ctx, contentKey(r.ID), content, mime); err != nil {
		if !errors.Is(err, storage.ErrQuotaExceeded) {
			return Report{}, domain.OperationResult{Message: "Failed to save report log."}, err
		}
		log.Warn().Str("report_id", r.ID).Int64("size", r.Size).Msg("storage quota exceeded, saving report metadata only")
		r.HasContent = false
		metadataOnly = true
	}

	list := append([]Report{r}, existing...)
	for len(list) > MaxReports {
		a.dropContent(ctx, list[len(list)-1])
		list = list[:len(list)-1]
	}

	for len(list) > 0 {
		err := a.save(ctx, list)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrQuotaExceeded) {
			return Report{}, domain.OperationResult{Message: "Failed to save report log."}, err
		}
		metadataOnly = true
		if len(list) == 1 {
			a.dropContent(ctx, list[0])
			return Report{}, domain.OperationResult{Message: "Failed to save report log."}, err
		}
		a.dropContent(ctx, list[len(list)-1])
		list = list[:len(list)-1]
	}

	if metadataOnly {
		return r, domain.OperationResult{Success: true, Message: "Storage full. Saved metadata only."}, nil
	}
	return r, domain.OperationResult{Success: true, Message: "Report saved to logs."}, nil
}

// List returns every archived report, newest first.
func (a *Archive) List(ctx context.Context) ([]Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.load(ctx)
}

// Get returns a report and its payload. The payload is nil for metadata-only
// entries.
func (a *Archive) Get(ctx context.Context, id string) (Report, []byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	list, err := a.load(ctx)
	if err != nil {
		return Report{}, nil, err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return Report{}, nil, domain.Unknown("get report", "report", id)
	}
	r := list[idx]
	if !r.HasContent {
		return r, nil, nil
	}

	data, err := a.store.GetObject(ctx, contentKey(id))
	if errors.Is(err, storage.ErrObjectNotFound) {
		r.HasContent = false
		return r, nil, nil
	}
	if err != nil {
		return Report{}, nil, err
	}
	return r, data, nil
}

func (a *Archive) Rename(ctx context.Context, id, title string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	title = strings.TrimSpace(title)
	if title == "" {
		return domain.NewLedgerError("rename report", "report", id, domain.ErrInvalidInput, "title is required")
	}

	list, err := a.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return domain.Unknown("rename report", "report", id)
	}
	list[idx].Title = title
	return a.save(ctx, list)
}

func (a *Archive) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	list, err := a.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return domain.Unknown("delete report", "report", id)
	}
	a.dropContent(ctx, list[idx])
	list = append(list[:idx], list[idx+1:]...)
	return a.save(ctx, list)
}

// Clear removes every report and its payload.
func (a *Archive) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	objects, err := a.store.ListObjects(ctx, contentPrefix)
	if err != nil {
		return err
	}
	for _, obj := range objects {
		if err := a.store.DeleteObject(ctx, obj.Key); err != nil {
			return err
		}
	}
	return a.store.DeleteObject(ctx, indexKey)
}

func (a *Archive) load(ctx context.Context) ([]Report, error) {
	data, err := a.store.GetObject(ctx, indexKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return []Report{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load report index: %w", err)
	}

	var list []Report
	if err := json.Unmarshal(data, &list); err != nil {
		log.Error().Err(err).Msg("report index is corrupt, starting empty")
		return []Report{}, nil
	}
	return list, nil
}

func (a *Archive) save(ctx context.Context, list []Report) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode report index: %w", err)
	}
	return a.store.PutObject(ctx, indexKey, data, "application/json")
}

func (a *Archive) dropContent(ctx context.Context, r Report) {
	if !r.HasContent {
		return
	}
	if err := a.store.DeleteObject(ctx, contentKey(r.ID)); err != nil {
		log.Warn().Err(err).Str("report_id", r.ID).Msg("failed to delete report content")
	}
}

func contentKey(id string) string {
	return contentPrefix + id
}

func indexOf(list []Report, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with binary units and at most two
// decimals, e.g. 1536 -> "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
