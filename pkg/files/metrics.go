// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package files

import (
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

var (
	filesCreated = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "files_created",
		Help: "Counter of NACHA files created",
	}, []string{"destination"})

	filesParsed = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "files_parsed",
		Help: "Counter of NACHA files parsed and whether they were valid",
	}, []string{"valid"})

	filesReceived = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "files_received",
		Help: "Counter of NACHA files downloaded from the ODFI",
	}, []string{"hostname"})
)
