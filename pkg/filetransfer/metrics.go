// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package filetransfer

import (
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

var (
	filesUploaded = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "files_uploaded",
		Help: "Counter of files uploaded to the ODFI",
	}, []string{"hostname"})

	uploadFailures = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "file_upload_failures",
		Help: "Counter of files which failed to upload",
	}, []string{"hostname"})

	filesDownloaded = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "files_downloaded",
		Help: "Counter of files downloaded from the ODFI",
	}, []string{"hostname"})

	downloadFailures = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "file_download_failures",
		Help: "Counter of downloaded files which could not be recorded",
	}, []string{"hostname"})
)
