// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/moov-io/achfile/pkg/config"
	"github.com/moov-io/achfile/pkg/events"
	"github.com/moov-io/achfile/pkg/nacha"
	"github.com/moov-io/achfile/pkg/storage"
	"github.com/moov-io/achfile/pkg/upload"
	"github.com/moov-io/base"

	"github.com/go-kit/kit/log"
	"github.com/patrickmn/go-cache"
)

// Service builds, parses and keeps NACHA files. Contents live in Storage while
// metadata is kept in the Repository.
type Service struct {
	logger  log.Logger
	repo    Repository
	storage storage.Storage
	emitter events.Emitter

	http     config.HTTP
	odfi     config.ODFI
	location *time.Location

	// parsed files by fileID
	cache *cache.Cache

	now func() time.Time
}

func NewService(logger log.Logger, cfg *config.Config, repo Repository, store storage.Storage, emitter events.Emitter) *Service {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Service{
		logger:   logger,
		repo:     repo,
		storage:  store,
		emitter:  emitter,
		http:     cfg.Http,
		odfi:     cfg.ODFI,
		location: cfg.ODFI.Cutoffs.Location(),
		cache:    cache.New(10*time.Minute, 20*time.Minute),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Create builds a file from req, stores its contents and records it as pending upload.
func (s *Service) Create(ctx context.Context, req CreateFile) (*File, error) {
	req.Sanitize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	file, err := Build(req, s.location, nacha.WithLogger(s.logger), nacha.WithClock(s.clock))
	if err != nil {
		return nil, err
	}

	filename := req.Filename
	if filename == "" {
		filename, err = s.nextFilename(strings.TrimSpace(file.Header.ImmediateOrigin.Value))
		if err != nil {
			return nil, fmt.Errorf("naming file: %v", err)
		}
	}

	f := newFile(base.ID(), filename, file, s.now())
	f.Direction = Outbound
	f.Status = Pending
	f.StoragePath = storage.OutboundPath(f.CreatedAt, f.FileID+".ach")

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	if err := s.save(ctx, f, file, buf.Bytes()); err != nil {
		return nil, err
	}
	filesCreated.With("destination", f.ImmediateDestination).Add(1)

	s.logger.Log("files", fmt.Sprintf("created %s", f.Filename), "fileID", f.FileID, "entries", f.EntryCount)

	if event, err := events.NewFileCreated(s.http, f.FileID, f.Filename, file); err != nil {
		s.logger.Log("files", fmt.Sprintf("building FileCreated event: %v", err), "fileID", f.FileID)
	} else {
		s.emit(ctx, event)
	}
	return f, nil
}

func (s *Service) save(ctx context.Context, f *File, file *nacha.File, contents []byte) error {
	if err := s.storage.SaveFile(ctx, f.StoragePath, contents); err != nil {
		return fmt.Errorf("storing %s: %v", f.Filename, err)
	}
	if err := s.repo.Create(f); err != nil {
		if e := s.storage.DeleteFile(ctx, f.StoragePath); e != nil {
			s.logger.Log("files", fmt.Sprintf("cleanup of %s: %v", f.StoragePath, e), "fileID", f.FileID)
		}
		return err
	}
	s.cache.Set(f.FileID, file, cache.DefaultExpiration)
	return nil
}

func newFile(fileID, filename string, file *nacha.File, now time.Time) *File {
	summary := events.Summarize(file)
	return &File{
		FileID:               fileID,
		Filename:             filename,
		ImmediateOrigin:      strings.TrimSpace(file.Header.ImmediateOrigin.Value),
		ImmediateDestination: strings.TrimSpace(file.Header.ImmediateDestination.Value),
		BatchCount:           summary.BatchCount,
		EntryCount:           summary.EntryCount,
		TotalDebit:           summary.TotalDebit,
		TotalCredit:          summary.TotalCredit,
		CreatedAt:            now,
	}
}

// nextFilename renders the outbound filename template with the next sequence
// number among today's files.
func (s *Service) nextFilename(origin string) (string, error) {
	today := s.now().Truncate(24 * time.Hour)
	existing, err := s.repo.List(ListOptions{
		Direction:    Outbound,
		CreatedAfter: today,
	})
	if err != nil {
		return "", err
	}
	seq := 0
	for i := range existing {
		if n := upload.ACHFilenameSeq(existing[i].Filename); n > seq {
			seq = n
		}
	}
	return upload.RenderACHFilename(s.odfi.FilenameTemplate(), upload.FilenameData{
		RoutingNumber: origin,
		N:             upload.RoundSequenceNumber(seq + 1),
	})
}

func (s *Service) Get(ctx context.Context, fileID string) (*File, error) {
	f, err := s.repo.Get(fileID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrNotFound
	}
	return f, nil
}

func (s *Service) List(ctx context.Context, opts ListOptions) ([]*File, error) {
	return s.repo.List(opts)
}

// Contents returns the stored NACHA text of a file.
func (s *Service) Contents(ctx context.Context, fileID string) (*File, []byte, error) {
	f, err := s.Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	bs, err := s.storage.ReadFile(ctx, f.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return f, nil, fmt.Errorf("%s contents: %w", fileID, ErrNotFound)
		}
		return f, nil, err
	}
	return f, bs, nil
}

// Open returns the parsed form of a stored file.
func (s *Service) Open(ctx context.Context, fileID string) (*File, *nacha.File, error) {
	if v, ok := s.cache.Get(fileID); ok {
		f, err := s.Get(ctx, fileID)
		if err != nil {
			return nil, nil, err
		}
		return f, v.(*nacha.File), nil
	}

	f, bs, err := s.Contents(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	file, err := s.Parse(bytes.NewReader(bs))
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", fileID, err)
	}
	s.cache.Set(fileID, file, cache.DefaultExpiration)
	return f, file, nil
}

// Parse reads a NACHA file without keeping it.
func (s *Service) Parse(r io.Reader) (*nacha.File, error) {
	file, err := nacha.ReadFile(r, nacha.WithLogger(s.logger))
	filesParsed.With("valid", strconv.FormatBool(err == nil)).Add(1)
	return file, err
}

// Delete removes a pending file so it is never uploaded.
func (s *Service) Delete(ctx context.Context, fileID string) error {
	f, err := s.Get(ctx, fileID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(fileID, s.now()); err != nil {
		return err
	}
	s.cache.Delete(fileID)

	if err := s.storage.DeleteFile(ctx, f.StoragePath); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Log("files", fmt.Sprintf("deleting contents of %s: %v", f.Filename, err), "fileID", fileID)
	}
	return nil
}

// Pending returns outbound files waiting to be uploaded, oldest first.
func (s *Service) Pending(ctx context.Context) ([]*File, error) {
	return s.repo.List(ListOptions{
		Status:    Pending,
		Direction: Outbound,
	})
}

func (s *Service) MarkUploaded(ctx context.Context, f *File, hostname string) error {
	if err := s.repo.MarkUploaded(f.FileID, hostname, s.now()); err != nil {
		return fmt.Errorf("marking %s uploaded: %v", f.FileID, err)
	}
	s.emit(ctx, events.NewFileUploaded(f.FileID, f.Filename, hostname))
	return nil
}

func (s *Service) MarkFailed(ctx context.Context, f *File) error {
	return s.repo.UpdateStatus(f.FileID, Failed)
}

// Receive parses and records a file downloaded from the ODFI.
func (s *Service) Receive(ctx context.Context, filename, hostname string, contents []byte) (*File, error) {
	file, err := s.Parse(bytes.NewReader(contents))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	f := newFile(base.ID(), filename, file, s.now())
	f.Direction = Inbound
	f.Status = Received
	f.Hostname = hostname
	f.StoragePath = storage.InboundPath(f.CreatedAt, f.FileID+".ach")

	if err := s.save(ctx, f, file, contents); err != nil {
		return nil, err
	}
	filesReceived.With("hostname", hostname).Add(1)

	s.emit(ctx, events.NewFileReceived(f.FileID, f.Filename, file))
	return f, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Send(ctx, event); err != nil {
		s.logger.Log("files", fmt.Sprintf("sending %s: %v", event.Type(), err), "eventID", event.ID())
	}
}

func (s *Service) clock() time.Time {
	return s.now().In(s.location)
}
