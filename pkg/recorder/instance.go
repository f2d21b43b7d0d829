// Package recorder stores uploaded recordings for configured entries and
// fires the saved event for each one.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/voicerec/voicerec/pkg/bus"
	"github.com/voicerec/voicerec/pkg/config"
	"github.com/voicerec/voicerec/pkg/logging"
	"github.com/voicerec/voicerec/pkg/metrics"
	"github.com/voicerec/voicerec/pkg/urlmap"
)

// ErrNoFilePart is returned when the multipart stream ends without a file
// field. Nothing has been written and no event fired.
var ErrNoFilePart = errors.New("no file field found")

const (
	// timestampLayout gives second resolution names like
	// recording_2026-08-29_13:45:12.mp3.
	timestampLayout = "2006-01-02_15:04:05"

	chunkSize = 64 * 1024

	// sniffLimit bounds the bytes kept for content-type detection.
	sniffLimit = 3072
)

// Instance is one recorder: a save location plus the lock serializing its
// uploads. Instances for different entries run independently.
type Instance struct {
	entry  config.Entry
	fs     afero.Fs
	events bus.Bus
	roots  urlmap.Roots
	logger *logging.Logger

	// sem serializes uploads for this instance. Built eagerly here so no
	// lazy-init needs guarding on the first concurrent requests.
	sem      chan struct{}
	inflight *InFlightSet

	// now is swapped in tests to pin generated filenames.
	now func() time.Time
}

// NewInstance builds an instance over the entry's save location.
func NewInstance(entry config.Entry, fs afero.Fs, events bus.Bus, roots urlmap.Roots, logger *logging.Logger) *Instance {
	return &Instance{
		entry:    entry,
		fs:       fs,
		events:   events,
		roots:    roots,
		logger:   logger.With("entry", entry.ID),
		sem:      make(chan struct{}, 1),
		inflight: NewInFlightSet(),
		now:      time.Now,
	}
}

// Entry returns the configuration this instance was built from.
func (in *Instance) Entry() config.Entry { return in.entry }

// InFlight exposes the in-flight path set for the retention sweeper.
func (in *Instance) InFlight() *InFlightSet { return in.inflight }

// Upload stores one multipart upload. It blocks until this instance's lock
// is free; a caller whose context dies while waiting (or while streaming)
// fails fast without leaking the lock. At most one file is written per call.
func (in *Instance) Upload(ctx context.Context, reader *multipart.Reader) (*Result, error) {
	select {
	case in.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-in.sem }()

	result, err := in.receive(ctx, reader)
	if err != nil {
		metrics.UploadFailuresTotal.Inc()
		return nil, err
	}

	metrics.UploadsTotal.Inc()
	metrics.UploadBytesTotal.Add(float64(result.Size))
	return result, nil
}

// receive walks the multipart parts in arrival order. Text fields keep their
// sentinel defaults unless a non-empty value arrives; unrecognized fields
// are skipped without error.
func (in *Instance) receive(ctx context.Context, reader *multipart.Reader) (*Result, error) {
	result := &Result{
		EventName: DefaultEventName,
		BrowserID: DefaultBrowserID,
		UserID:    DefaultUserID,
	}

	haveFile := false
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read multipart stream: %w", err)
		}

		switch part.FormName() {
		case FieldFile:
			err = in.saveFile(part, result)
			haveFile = err == nil
		case FieldEventName:
			result.EventName, err = textField(part, result.EventName)
		case FieldBrowserID:
			result.BrowserID, err = textField(part, result.BrowserID)
		case FieldUserID:
			result.UserID, err = textField(part, result.UserID)
		}
		part.Close()
		if err != nil {
			return nil, err
		}
	}

	if !haveFile {
		return nil, ErrNoFilePart
	}

	result.PublicPath = in.roots.PublicURL(result.Path)
	in.fireSaved(ctx, result)

	return result, nil
}

// saveFile streams the file part to a timestamped destination, counting
// bytes. On a mid-write failure the truncated file stays on disk; hiding it
// would be worse than documenting it.
func (in *Instance) saveFile(part *multipart.Part, result *Result) error {
	filename := "recording_" + in.now().Format(timestampLayout) + ".mp3"
	path := filepath.Join(in.entry.SavePath, filename)

	in.inflight.Add(path)
	defer in.inflight.Remove(path)

	dst, err := in.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	var (
		size int64
		head []byte
		buf  = make([]byte, chunkSize)
	)
	for {
		n, readErr := part.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				dst.Close()
				return fmt.Errorf("write %s: %w", path, err)
			}
			size += int64(n)
			if len(head) < sniffLimit {
				head = append(head, buf[:min(n, sniffLimit-len(head))]...)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			dst.Close()
			return fmt.Errorf("read upload stream: %w", readErr)
		}
	}

	if err := dst.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	result.Filename = filename
	result.Path = path
	result.Size = size
	result.ContentType = mimetype.Detect(head).String()

	in.logger.Info("recording saved", "file", filename, "size", humanize.Bytes(uint64(size)))
	return nil
}

// fireSaved emits exactly one saved event per stored recording.
func (in *Instance) fireSaved(ctx context.Context, result *Result) {
	in.events.Fire(ctx, bus.EventSaved, map[string]any{
		"browserID": result.BrowserID,
		"eventName": result.EventName,
		"filename":  result.Filename,
		"path":      result.PublicPath,
		"size":      result.Size,
		"filetype":  result.ContentType,
		"user_id":   result.UserID,
	})
}

// textField decodes a text part as UTF-8, keeping fallback for absent or
// empty values.
func textField(part *multipart.Part, fallback string) (string, error) {
	raw, err := io.ReadAll(part)
	if err != nil {
		return "", fmt.Errorf("read %s field: %w", part.FormName(), err)
	}
	if len(raw) == 0 {
		return fallback, nil
	}
	return string(raw), nil
}
