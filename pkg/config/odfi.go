// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moov-io/achfile/pkg/nacha"
)

// ODFI describes the financial institution files are exchanged with.
type ODFI struct {
	RoutingNumber string
	Gateway       Gateway

	Cutoffs Cutoffs

	InboundPath  string
	OutboundPath string
	ReturnPath   string

	// AllowedIPs is a comma separated list of IP addresses and CIDR ranges
	// remote servers must resolve into.
	AllowedIPs string

	OutboundFilenameTemplate string

	FTP  *FTP
	SFTP *SFTP

	Inbound Inbound
	Storage ODFIStorage
}

func (cfg ODFI) Validate() error {
	if cfg.RoutingNumber == "" {
		return nil
	}
	if err := nacha.ValidateRoutingNumber(cfg.RoutingNumber); err != nil {
		return fmt.Errorf("routing number: %v", err)
	}
	if err := cfg.Cutoffs.Validate(); err != nil {
		return fmt.Errorf("cutoffs: %v", err)
	}
	if cfg.FTP != nil && cfg.SFTP != nil {
		return errors.New("only one of ftp or sftp can be configured")
	}
	if cfg.FTP != nil && cfg.FTP.Hostname == "" {
		return errors.New("ftp: missing hostname")
	}
	if cfg.SFTP != nil && cfg.SFTP.Hostname == "" {
		return errors.New("sftp: missing hostname")
	}
	return nil
}

// DefaultFilenameTemplate names outbound files by creation date, routing
// number and the day's sequence number.
//
// Examples:
//   - 20191010-987654320-1.ach
//   - 20191010-987654320-2.ach.gpg (GPG encrypted)
const DefaultFilenameTemplate = `{{ date "20060102" }}-{{ .RoutingNumber }}-{{ .N }}.ach{{ if .GPG }}.gpg{{ end }}`

func (cfg *ODFI) FilenameTemplate() string {
	if cfg == nil || cfg.OutboundFilenameTemplate == "" {
		return DefaultFilenameTemplate
	}
	return cfg.OutboundFilenameTemplate
}

func (cfg ODFI) SplitAllowedIPs() []string {
	if cfg.AllowedIPs == "" {
		return nil
	}
	var out []string
	for _, ip := range strings.Split(cfg.AllowedIPs, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			out = append(out, ip)
		}
	}
	return out
}

// Gateway holds the values written into the file header of generated files.
type Gateway struct {
	Origin          string
	OriginName      string
	Destination     string
	DestinationName string
}

type Cutoffs struct {
	Timezone string
	Windows  []string
}

func (cfg Cutoffs) Location() *time.Location {
	if cfg.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (cfg Cutoffs) Validate() error {
	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return fmt.Errorf("timezone: %v", err)
		}
	}
	for i := range cfg.Windows {
		if _, err := time.Parse("15:04", cfg.Windows[i]); err != nil {
			return fmt.Errorf("invalid window %q: %v", cfg.Windows[i], err)
		}
	}
	return nil
}

type FTP struct {
	Hostname string
	Username string
	Password string `json:"-"`

	CAFile      string
	DialTimeout time.Duration
	DisableEPSV bool
}

func (cfg *FTP) Timeout() time.Duration {
	if cfg == nil || cfg.DialTimeout <= 0 {
		return 10 * time.Second
	}
	return cfg.DialTimeout
}

type SFTP struct {
	Hostname string
	Username string
	Password string `json:"-"`

	ClientPrivateKey string `json:"-"`
	HostPublicKey    string

	DialTimeout           time.Duration
	MaxConnectionsPerFile int
	MaxPacketSize         int
}

func (cfg *SFTP) Timeout() time.Duration {
	if cfg == nil || cfg.DialTimeout <= 0 {
		return 10 * time.Second
	}
	return cfg.DialTimeout
}

// MaxConnections is the maximum number of concurrent requests per file.
// pkg/sftp's default is 64.
func (cfg *SFTP) MaxConnections() int {
	if cfg == nil || cfg.MaxConnectionsPerFile <= 0 {
		return 8
	}
	return cfg.MaxConnectionsPerFile
}

// PacketSize is lowered from pkg/sftp's default of 32768 which some servers
// reject with "failed to send packet header: EOF".
func (cfg *SFTP) PacketSize() int {
	if cfg == nil || cfg.MaxPacketSize <= 0 {
		return 20480
	}
	return cfg.MaxPacketSize
}

type Inbound struct {
	Interval time.Duration
}

func (cfg Inbound) Every() time.Duration {
	if cfg.Interval <= 0 {
		return 10 * time.Minute
	}
	return cfg.Interval
}

type ODFIStorage struct {
	KeepRemoteFiles bool
}
