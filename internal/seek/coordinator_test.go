package seek

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/luminakb/lumina/internal/domain"
)

func videoItem(id, title, url, videoID string) *domain.ContentItem {
	return &domain.ContentItem{ID: id, Type: domain.SourceYouTube, Title: title, URL: url, VideoID: videoID}
}

func videoRef(title string, seconds int) domain.Reference {
	return domain.Reference{
		Source: domain.Source{
			Type:     domain.SourceYouTube,
			Title:    title,
			Location: domain.Location{Type: domain.LocationTimestamp, Value: seconds},
		},
	}
}

func newTestCoordinator() *Coordinator {
	return NewCoordinator(50*time.Millisecond, zap.NewNop())
}

func TestResolveMatchesByTitle(t *testing.T) {
	c := newTestCoordinator()
	items := []*domain.ContentItem{
		videoItem("v1", "Other Video", "", ""),
		videoItem("v2", "my video", "", ""),
	}

	target, err := c.Resolve(videoRef("My Video", 30), "", items, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.ItemID != "v2" {
		t.Fatalf("matched item %s, want v2", target.ItemID)
	}
	if target.OffsetSeconds != 30 {
		t.Fatalf("offset = %d, want 30", target.OffsetSeconds)
	}
	if !target.SwitchItem {
		t.Fatal("expected switch_item to be set")
	}
}

func TestResolveMatchesByURL(t *testing.T) {
	c := newTestCoordinator()
	items := []*domain.ContentItem{
		videoItem("v1", "Some Title", "https://youtube.com/watch?v=abc123", ""),
	}

	target, err := c.Resolve(videoRef("https://youtube.com/watch?v=abc123", 10), "", items, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.ItemID != "v1" {
		t.Fatalf("matched item %s, want v1", target.ItemID)
	}
}

func TestResolveMatchesByVideoID(t *testing.T) {
	c := newTestCoordinator()
	items := []*domain.ContentItem{
		videoItem("v1", "Unrelated Title", "", "abc123"),
	}

	target, err := c.Resolve(videoRef("clip abc123 excerpt", 10), "", items, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.ItemID != "v1" {
		t.Fatalf("matched item %s, want v1", target.ItemID)
	}
}

func TestResolveDocumentByExactTitle(t *testing.T) {
	c := newTestCoordinator()
	items := []*domain.ContentItem{
		{ID: "d1", Type: domain.SourcePDF, Title: "Thermo Notes"},
	}
	ref := domain.Reference{Source: domain.Source{
		Type:     domain.SourcePDF,
		Title:    "Thermo Notes",
		Location: domain.Location{Type: domain.LocationPage, Value: 12},
	}}

	target, err := c.Resolve(ref, "", items, "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Page != 12 {
		t.Fatalf("page = %d, want 12", target.Page)
	}
	if target.SwitchItem {
		t.Fatal("item already on screen, switch_item must be false")
	}
}

func TestResolveMMSSRawOffset(t *testing.T) {
	c := newTestCoordinator()
	items := []*domain.ContentItem{videoItem("v1", "My Video", "", "")}

	target, err := c.Resolve(videoRef("My Video", 0), "2:05", items, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.OffsetSeconds != 125 {
		t.Fatalf("offset = %d, want 125", target.OffsetSeconds)
	}
}

func TestResolveInvalidOffsetDoesNotDefaultToZero(t *testing.T) {
	c := newTestCoordinator()
	items := []*domain.ContentItem{videoItem("v1", "My Video", "", "")}

	if _, err := c.Resolve(videoRef("My Video", 30), "garbage", items, ""); err == nil {
		t.Fatal("expected error for unparseable offset")
	}
}

func TestResolveNoMatch(t *testing.T) {
	c := newTestCoordinator()
	items := []*domain.ContentItem{videoItem("v1", "Other Video", "", "")}

	_, err := c.Resolve(videoRef("Nothing Like It", 30), "", items, "")
	if !errors.Is(err, domain.ErrNoMatchingItem) {
		t.Fatalf("expected ErrNoMatchingItem, got %v", err)
	}
}

// fakeViewer records coordinator calls and controls the ready signal
type fakeViewer struct {
	current  string
	ready    chan struct{}
	selected []string
	seeks    []domain.SeekTarget
}

func newFakeViewer(current string) *fakeViewer {
	return &fakeViewer{current: current, ready: make(chan struct{})}
}

func (v *fakeViewer) CurrentItemID() string { return v.current }

func (v *fakeViewer) Select(ctx context.Context, item *domain.ContentItem) error {
	v.selected = append(v.selected, item.ID)
	return nil
}

func (v *fakeViewer) Ready() <-chan struct{} { return v.ready }

func (v *fakeViewer) Seek(ctx context.Context, target domain.SeekTarget) error {
	v.seeks = append(v.seeks, target)
	return nil
}

func TestActivateSameItemSeeksImmediately(t *testing.T) {
	c := newTestCoordinator()
	items := []*domain.ContentItem{videoItem("v1", "My Video", "", "")}
	viewer := newFakeViewer("v1")

	// ready channel is never signalled; a same-item seek must not wait on it
	if err := c.Activate(context.Background(), viewer, videoRef("My Video", 42), "", items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(viewer.selected) != 0 {
		t.Fatalf("unexpected item switch: %v", viewer.selected)
	}
	if len(viewer.seeks) != 1 || viewer.seeks[0].OffsetSeconds != 42 {
		t.Fatalf("unexpected seeks: %+v", viewer.seeks)
	}
}

func TestActivateSwitchWaitsForReady(t *testing.T) {
	c := newTestCoordinator()
	items := []*domain.ContentItem{videoItem("v2", "My Video", "", "")}
	viewer := newFakeViewer("v1")
	close(viewer.ready)

	if err := c.Activate(context.Background(), viewer, videoRef("My Video", 10), "", items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(viewer.selected) != 1 || viewer.selected[0] != "v2" {
		t.Fatalf("unexpected selections: %v", viewer.selected)
	}
	if len(viewer.seeks) != 1 {
		t.Fatalf("expected one seek, got %d", len(viewer.seeks))
	}
}

func TestActivateReadyTimeout(t *testing.T) {
	c := newTestCoordinator()
	items := []*domain.ContentItem{videoItem("v2", "My Video", "", "")}
	viewer := newFakeViewer("v1") // ready never fires

	err := c.Activate(context.Background(), viewer, videoRef("My Video", 10), "", items)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if len(viewer.seeks) != 0 {
		t.Fatalf("seek must not be issued to an unready viewer, got %+v", viewer.seeks)
	}
}
