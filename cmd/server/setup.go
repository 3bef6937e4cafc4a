// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/moov-io/achfile/pkg/config"
	"github.com/moov-io/achfile/pkg/files"
	"github.com/moov-io/achfile/pkg/filetransfer"
	"github.com/moov-io/achfile/pkg/upload"
	"github.com/moov-io/achfile/pkg/util"
	"github.com/moov-io/base/admin"
)

// validateTemplate renders the outbound filename template once so mistakes
// are found at startup instead of the first file created.
func validateTemplate(cfg config.ODFI) error {
	filename, err := upload.RenderACHFilename(cfg.FilenameTemplate(), upload.FilenameData{
		RoutingNumber: util.Or(cfg.RoutingNumber, "987654320"),
		N:             "1",
		GPG:           true,
	})
	if err != nil {
		return fmt.Errorf("outbound filename template: %v", err)
	}
	if strings.TrimSpace(filename) == "" {
		return errors.New("outbound filename template: empty filename rendered")
	}
	return nil
}

// setupFileTransferController connects to the ODFI's server. It returns nil
// when no server is configured so files are only kept locally.
func setupFileTransferController(cfg *config.Config, svc *files.Service, adminServer *admin.Server) (*filetransfer.Controller, error) {
	if cfg.ODFI.FTP == nil && cfg.ODFI.SFTP == nil {
		cfg.Logger.Log("filetransfer", "no FTP or SFTP server configured, files will not be uploaded")
		return nil, nil
	}

	agent, err := upload.New(cfg.Logger, cfg.ODFI)
	if err != nil {
		return nil, err
	}
	controller, err := filetransfer.NewController(cfg.Logger, cfg, svc, agent, nil)
	if err != nil {
		agent.Close()
		return nil, err
	}
	controller.RegisterRoutes(adminServer)

	return controller, nil
}
