package marking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/examiner/internal/recognition"
)

// StoragePrefix returns the blob key prefix under which a submission's pages are archived.
func StoragePrefix(id fmt.Stringer) string {
	return fmt.Sprintf("submissions/%s/", id)
}

// StorageKey returns the blob key of a submitted page. number is one-based.
func StorageKey(id fmt.Stringer, number int) string {
	return fmt.Sprintf("%spage-%d", StoragePrefix(id), number)
}

// ArchiveNode returns a state node that seeds the MarkingState from the
// submission and uploads every page image to blob storage. Upload failures
// are logged and do not stop the pipeline.
func ArchiveNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		sub, err := extractSubmission(s)
		if err != nil {
			return s, fmt.Errorf("archive: %w", err)
		}

		ms := MarkingState{
			SubmissionID: sub.ID,
			Hint:         sub.Hint,
			Pages:        make([]Page, len(sub.Pages)),
		}
		for i, data := range sub.Pages {
			ms.Pages[i] = Page{Index: i, data: data}
		}

		archived := archivePages(ctx, rt, &ms)

		rt.Logger.InfoContext(
			ctx, "archive node complete",
			"submission_id", sub.ID,
			"page_count", len(ms.Pages),
			"archived", archived,
		)

		return s.Set(KeyState, ms), nil
	})
}

func archivePages(ctx context.Context, rt *Runtime, ms *MarkingState) int {
	if rt.Storage == nil {
		return 0
	}

	archived := 0
	for i := range ms.Pages {
		page := &ms.Pages[i]
		key := StorageKey(ms.SubmissionID, page.Index+1)
		contentType := http.DetectContentType(page.data)

		if err := rt.Storage.Upload(ctx, key, bytes.NewReader(page.data), contentType); err != nil {
			rt.Logger.WarnContext(ctx, "page archival failed", "key", key, "error", err)
			continue
		}
		page.StorageKey = key
		archived++
	}
	return archived
}

// RecognizeNode returns a state node that recognizes every page concurrently
// and then runs math-region detection page by page. A page whose recognition
// fails entirely is recorded and skipped; ErrOCRFailure is returned only when
// no page could be read.
func RecognizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ms, err := extractState(s)
		if err != nil {
			return s, fmt.Errorf("recognize: %w", err)
		}

		if err := recognizePages(ctx, rt, ms); err != nil {
			return s, fmt.Errorf("recognize: %w", err)
		}

		if err := detectMath(ctx, rt, ms); err != nil {
			return s, fmt.Errorf("recognize: %w", err)
		}

		ms.Works = DetectQuestions(ms.Pages)
		if len(ms.Works) == 0 {
			return s, fmt.Errorf("recognize: %w: no student work found", recognition.ErrOCRFailure)
		}

		rt.Logger.InfoContext(
			ctx, "recognize node complete",
			"page_count", len(ms.Pages),
			"questions", len(ms.Works),
		)

		return s.Set(KeyState, *ms), nil
	})
}

func recognizePages(ctx context.Context, rt *Runtime, ms *MarkingState) error {
	outcomes := make([]*recognition.Result, len(ms.Pages))
	failures := make([]error, len(ms.Pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(ms.Pages)))

	for i := range ms.Pages {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			res, err := rt.Recognition.Recognize(gctx, ms.Pages[i].data)
			if err != nil {
				if !errors.Is(err, recognition.ErrOCRFailure) {
					return fmt.Errorf("page %d: %w", i+1, err)
				}
				failures[i] = err
				return nil
			}
			outcomes[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrRecognizeFailed, err)
	}

	read := 0
	for i := range ms.Pages {
		page := &ms.Pages[i]
		if failures[i] != nil {
			page.Error = failures[i].Error()
			rt.Logger.WarnContext(ctx, "page recognition failed", "page", i+1, "error", failures[i])
			continue
		}

		res := outcomes[i]
		page.Width, page.Height = res.Width, res.Height
		page.Passes = res.Passes
		page.clusters = res.Clusters
		if res.Degraded() {
			page.Degraded = true
			page.Blocks = append(page.Blocks, *res.Fallback)
		}
		read++
	}

	if read == 0 {
		return recognition.ErrOCRFailure
	}
	return nil
}

func detectMath(ctx context.Context, rt *Runtime, ms *MarkingState) error {
	for i := range ms.Pages {
		page := &ms.Pages[i]
		if page.Error != "" || page.Degraded {
			continue
		}

		blocks, stats, err := rt.Math.Detect(ctx, page.data, page.clusters)
		if err != nil {
			return fmt.Errorf("%w: page %d: %w", ErrRecognizeFailed, i+1, err)
		}
		page.Blocks = blocks
		page.Math = stats
	}
	return nil
}
