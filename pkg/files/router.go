// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package files

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/moov-io/achfile/pkg/nacha"
	"github.com/moov-io/achfile/x/route"
	"github.com/moov-io/base"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000

	// maxFileSize bounds request bodies holding NACHA text
	maxFileSize = 20 * 1024 * 1024
)

type Router struct {
	Logger  log.Logger
	Service *Service

	CreateFile   http.HandlerFunc
	ParseFile    http.HandlerFunc
	ValidateFile http.HandlerFunc
	ListFiles    http.HandlerFunc
	GetFile      http.HandlerFunc
	GetContents  http.HandlerFunc
	DeleteFile   http.HandlerFunc
}

func NewRouter(logger log.Logger, svc *Service) *Router {
	return &Router{
		Logger:       logger,
		Service:      svc,
		CreateFile:   CreateFile(logger, svc),
		ParseFile:    ParseFile(logger, svc),
		ValidateFile: ValidateFile(logger, svc),
		ListFiles:    ListFiles(logger, svc),
		GetFile:      GetFile(logger, svc),
		GetContents:  GetContents(logger, svc),
		DeleteFile:   DeleteFile(logger, svc),
	}
}

func (c *Router) RegisterRoutes(r *mux.Router) {
	r.Methods("POST").Path("/files").HandlerFunc(c.CreateFile)
	r.Methods("POST").Path("/files/parse").HandlerFunc(c.ParseFile)
	r.Methods("POST").Path("/files/validate").HandlerFunc(c.ValidateFile)
	r.Methods("GET").Path("/files").HandlerFunc(c.ListFiles)
	r.Methods("GET").Path("/files/{fileID}").HandlerFunc(c.GetFile)
	r.Methods("GET").Path("/files/{fileID}/contents").HandlerFunc(c.GetContents)
	r.Methods("DELETE").Path("/files/{fileID}").HandlerFunc(c.DeleteFile)
}

func getFileID(r *http.Request) string {
	return route.ReadPathID("fileID", r)
}

// respondError picks the status code for errors returned by Service.
func respondError(responder *route.Responder, err error) {
	var nerr *nacha.Error
	var el base.ErrorList
	switch {
	case errors.Is(err, ErrNotFound):
		responder.NotFound()
	case errors.As(err, &nerr), errors.As(err, &el),
		errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrNotPending), errors.Is(err, ErrDuplicateFilename):
		responder.Problem(err)
	default:
		responder.InternalError(err)
	}
}

func CreateFile(logger log.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder := route.NewResponder(logger, w, r)

		var req CreateFile
		if err := json.NewDecoder(io.LimitReader(r.Body, maxFileSize)).Decode(&req); err != nil {
			responder.Problem(fmt.Errorf("reading request: %v", err))
			return
		}

		file, err := svc.Create(r.Context(), req)
		if err != nil {
			respondError(responder, err)
			return
		}

		responder.Respond(func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(file)
		})
	}
}

func ParseFile(logger log.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder := route.NewResponder(logger, w, r)

		file, err := svc.Parse(io.LimitReader(r.Body, maxFileSize))
		if err != nil {
			responder.Problem(err)
			return
		}

		responder.Respond(func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(Describe(file))
		})
	}
}

type validateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func ValidateFile(logger log.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder := route.NewResponder(logger, w, r)

		var resp validateResponse
		if _, err := svc.Parse(io.LimitReader(r.Body, maxFileSize)); err != nil {
			resp.Error = err.Error()
		} else {
			resp.Valid = true
		}

		responder.Respond(func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(resp)
		})
	}
}

func ListFiles(logger log.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder := route.NewResponder(logger, w, r)

		opts := ListOptions{
			Limit: route.ReadLimit(r, defaultListLimit, maxListLimit),
		}
		if v := r.URL.Query().Get("status"); v != "" {
			status, err := ParseStatus(v)
			if err != nil {
				responder.Problem(err)
				return
			}
			opts.Status = status
		}
		switch d := Direction(r.URL.Query().Get("direction")); d {
		case "", Inbound, Outbound:
			opts.Direction = d
		default:
			responder.Problem(fmt.Errorf("unknown direction %q", d))
			return
		}

		files, err := svc.List(r.Context(), opts)
		if err != nil {
			responder.InternalError(err)
			return
		}
		if files == nil {
			files = []*File{}
		}

		responder.Respond(func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(files)
		})
	}
}

func GetFile(logger log.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder := route.NewResponder(logger, w, r)

		file, err := svc.Get(r.Context(), getFileID(r))
		if err != nil {
			respondError(responder, err)
			return
		}

		responder.Respond(func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(file)
		})
	}
}

func GetContents(logger log.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder := route.NewResponder(logger, w, r)

		file, contents, err := svc.Contents(r.Context(), getFileID(r))
		if err != nil {
			respondError(responder, err)
			return
		}

		responder.Respond(func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "text/plain")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
			w.WriteHeader(http.StatusOK)
			w.Write(contents)
		})
	}
}

func DeleteFile(logger log.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responder := route.NewResponder(logger, w, r)

		if err := svc.Delete(r.Context(), getFileID(r)); err != nil {
			respondError(responder, err)
			return
		}

		responder.Respond(func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
