package seek

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/luminakb/lumina/internal/citation"
	"github.com/luminakb/lumina/internal/domain"
)

// Viewer is the collaborator that actually shows content. Select begins
// loading an item; Ready reports when the viewer has mounted it and can
// accept a seek. The coordinator never seeks an unmounted viewer.
type Viewer interface {
	CurrentItemID() string
	Select(ctx context.Context, item *domain.ContentItem) error
	Ready() <-chan struct{}
	Seek(ctx context.Context, target domain.SeekTarget) error
}

// Coordinator turns an activated citation into a concrete seek: it
// finds the content item the reference points at, switches the viewer
// to it if needed, and moves the viewer to the cited offset.
type Coordinator struct {
	readyTimeout time.Duration
	logger       *zap.Logger
}

// NewCoordinator creates a coordinator. readyTimeout bounds how long a
// viewer switch may take before the seek is reported as failed.
func NewCoordinator(readyTimeout time.Duration, logger *zap.Logger) *Coordinator {
	if readyTimeout <= 0 {
		readyTimeout = 5 * time.Second
	}
	return &Coordinator{readyTimeout: readyTimeout, logger: logger}
}

// Resolve locates the content item a reference points at and computes
// the seek target. currentItemID marks the item already on screen so
// the client knows whether a switch is needed. Returns
// domain.ErrNoMatchingItem when nothing in the collection matches.
func (c *Coordinator) Resolve(ref domain.Reference, rawOffset string, items []*domain.ContentItem, currentItemID string) (domain.SeekTarget, error) {
	item := matchItem(ref.Source, items)
	if item == nil {
		c.logger.Warn("citation matches no content item",
			zap.String("source_type", string(ref.Source.Type)),
			zap.String("title", ref.Source.Title),
		)
		return domain.SeekTarget{}, domain.ErrNoMatchingItem
	}

	offset, ok := resolveOffset(ref.Source.Location.Value, rawOffset)
	if !ok {
		// an unparseable offset must not default to zero, that would
		// jump the viewer somewhere the user never asked for
		return domain.SeekTarget{}, fmt.Errorf("%w: unparseable offset %q", domain.ErrInvalidRequest, rawOffset)
	}

	target := domain.SeekTarget{
		ItemID:       item.ID,
		ItemType:     item.Type,
		LocationType: domain.LocationTypeFor(item.Type),
		SwitchItem:   item.ID != currentItemID,
	}
	if target.LocationType == domain.LocationTimestamp {
		target.OffsetSeconds = offset
	} else {
		target.Page = offset
	}
	return target, nil
}

// Activate resolves a reference and drives the viewer to it. If the
// target item is not the one on screen, the viewer is switched first
// and the seek waits for its ready signal, bounded by the configured
// timeout.
func (c *Coordinator) Activate(ctx context.Context, viewer Viewer, ref domain.Reference, rawOffset string, items []*domain.ContentItem) error {
	target, err := c.Resolve(ref, rawOffset, items, viewer.CurrentItemID())
	if err != nil {
		return err
	}

	if target.SwitchItem {
		item := findItem(items, target.ItemID)
		if err := viewer.Select(ctx, item); err != nil {
			return fmt.Errorf("select item %s: %w", target.ItemID, err)
		}
		select {
		case <-viewer.Ready():
		case <-time.After(c.readyTimeout):
			return fmt.Errorf("viewer not ready for item %s after %s", target.ItemID, c.readyTimeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return viewer.Seek(ctx, target)
}

// matchItem finds the collection item a source refers to. YouTube
// references match by case-insensitive URL or title equality, or by the
// reference title containing the item's video ID; first match wins.
// Other media match by exact title.
func matchItem(src domain.Source, items []*domain.ContentItem) *domain.ContentItem {
	refTitle := strings.ToLower(strings.TrimSpace(src.Title))
	for _, item := range items {
		if item == nil || item.Type != src.Type {
			continue
		}
		if src.Type == domain.SourceYouTube {
			switch {
			case item.URL != "" && strings.EqualFold(item.URL, src.Title):
				return item
			case strings.ToLower(strings.TrimSpace(item.Title)) == refTitle:
				return item
			case item.VideoID != "" && strings.Contains(refTitle, strings.ToLower(item.VideoID)):
				return item
			}
			continue
		}
		if item.Title == src.Title {
			return item
		}
	}
	return nil
}

func findItem(items []*domain.ContentItem, id string) *domain.ContentItem {
	for _, item := range items {
		if item != nil && item.ID == id {
			return item
		}
	}
	return nil
}

// resolveOffset prefers an explicit raw offset (seconds or MM:SS) over
// the reference's stored location value.
func resolveOffset(locationValue int, rawOffset string) (int, bool) {
	if strings.TrimSpace(rawOffset) != "" {
		return citation.ParseLocationValue(rawOffset)
	}
	if locationValue < 0 {
		return 0, false
	}
	return locationValue, true
}
