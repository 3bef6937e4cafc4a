// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/moov-io/achfile/internal/sshx"
	"github.com/moov-io/achfile/pkg/config"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/prometheus"
	"github.com/pkg/sftp"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/ssh"
)

var (
	sftpAgentUp = prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
		Name: "sftp_agent_up",
		Help: "Status of SFTP agent connection",
	}, []string{"hostname"})
)

type SFTPTransferAgent struct {
	conn   *ssh.Client
	client *sftp.Client
	cfg    config.ODFI
	logger log.Logger
	mu     sync.Mutex // protects all read/write methods
}

func newSFTPTransferAgent(logger log.Logger, cfg config.ODFI) (*SFTPTransferAgent, error) {
	if cfg.SFTP == nil {
		return nil, errors.New("nil SFTP config")
	}
	if err := rejectOutboundIPRange(cfg.SplitAllowedIPs(), cfg.SFTP.Hostname); err != nil {
		return nil, fmt.Errorf("sftp: %s is not allowed: %v", cfg.SFTP.Hostname, err)
	}

	agent := &SFTPTransferAgent{cfg: cfg, logger: logger}

	agent.mu.Lock()
	defer agent.mu.Unlock()

	_, err := agent.connection()
	agent.record(err)

	return agent, err
}

// connection returns an sftp.Client connected to the remote server,
// reconnecting when the current one stops responding.
//
// connection must be called with agent.mu held.
func (agent *SFTPTransferAgent) connection() (*sftp.Client, error) {
	if agent == nil || agent.cfg.SFTP == nil {
		return nil, errors.New("nil agent / config")
	}

	if agent.client != nil {
		if _, err := agent.client.Getwd(); err == nil {
			return agent.client, nil
		}
		agent.client.Close()
		agent.client = nil
	}

	conn, stdin, stdout, err := sftpConnect(agent.logger, agent.cfg)
	if err != nil {
		return nil, fmt.Errorf("sftp: %v", err)
	}
	agent.conn = conn

	opts := []sftp.ClientOption{
		sftp.MaxConcurrentRequestsPerFile(agent.cfg.SFTP.MaxConnections()),
		sftp.MaxPacket(agent.cfg.SFTP.PacketSize()),
	}
	client, err := sftp.NewClientPipe(stdout, stdin, opts...)
	if err != nil {
		go conn.Close()
		return nil, fmt.Errorf("sftp: connect: %v", err)
	}
	agent.client = client

	return agent.client, nil
}

var (
	hostKeyCallbackOnce sync.Once
	hostKeyCallback     = func(logger log.Logger) {
		logger.Log("sftp", "WARNING!!! Insecure default of skipping SFTP host key validation. Please set odfi.sftp.hostPublicKey")
	}
)

func sftpConnect(logger log.Logger, cfg config.ODFI) (*ssh.Client, io.WriteCloser, io.Reader, error) {
	conf, err := sshClientConfig(logger, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	var client *ssh.Client
	for i := 0; i < 3; i++ {
		client, err = ssh.Dial("tcp", cfg.SFTP.Hostname, conf)
		if err == nil {
			break
		}
		time.Sleep(250 * time.Millisecond)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("dial %s for %s: %v", cfg.SFTP.Hostname, cfg.RoutingNumber, err)
	}

	session, err := client.NewSession()
	if err != nil {
		go client.Close()
		return nil, nil, nil, err
	}
	if err = session.RequestSubsystem("sftp"); err != nil {
		go client.Close()
		return nil, nil, nil, err
	}
	pw, err := session.StdinPipe()
	if err != nil {
		go client.Close()
		return nil, nil, nil, err
	}
	pr, err := session.StdoutPipe()
	if err != nil {
		go client.Close()
		return nil, nil, nil, err
	}

	return client, pw, pr, nil
}

func sshClientConfig(logger log.Logger, cfg config.ODFI) (*ssh.ClientConfig, error) {
	if cfg.SFTP == nil {
		return nil, errors.New("nil sftp config")
	}

	conf := &ssh.ClientConfig{
		User:    cfg.SFTP.Username,
		Timeout: cfg.SFTP.Timeout(),
	}
	conf.SetDefaults()

	if cfg.SFTP.HostPublicKey != "" {
		pubKey, err := sshx.ReadPubKey([]byte(cfg.SFTP.HostPublicKey))
		if err != nil {
			return nil, fmt.Errorf("problem parsing ssh public key: %v", err)
		}
		conf.HostKeyCallback = ssh.FixedHostKey(pubKey)
	} else {
		hostKeyCallbackOnce.Do(func() {
			hostKeyCallback(logger)
		})
		conf.HostKeyCallback = ssh.InsecureIgnoreHostKey()
	}

	switch {
	case cfg.SFTP.Password != "":
		conf.Auth = append(conf.Auth, ssh.Password(cfg.SFTP.Password))
	case cfg.SFTP.ClientPrivateKey != "":
		signer, err := sshx.ReadSigner(cfg.SFTP.ClientPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to read client private key: %v", err)
		}
		conf.Auth = append(conf.Auth, ssh.PublicKeys(signer))
	default:
		return nil, fmt.Errorf("no auth method provided for routingNumber=%s", cfg.RoutingNumber)
	}
	return conf, nil
}

func (agent *SFTPTransferAgent) Ping() error {
	if agent == nil {
		return errors.New("nil SFTPTransferAgent")
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()

	conn, err := agent.connection()
	if err != nil {
		agent.record(err)
		return err
	}

	_, err = conn.ReadDir(".")
	agent.record(err)
	if err != nil {
		return fmt.Errorf("sftp: ping %v", err)
	}
	return nil
}

func (agent *SFTPTransferAgent) record(err error) {
	if agent == nil || agent.cfg.SFTP == nil {
		return
	}
	if err != nil {
		sftpAgentUp.With("hostname", agent.Hostname()).Set(0)
	} else {
		sftpAgentUp.With("hostname", agent.Hostname()).Set(1)
	}
}

func (agent *SFTPTransferAgent) Close() error {
	if agent == nil {
		return nil
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()

	if agent.client != nil {
		agent.client.Close()
		agent.client = nil
	}
	if agent.conn != nil {
		agent.conn.Close()
		agent.conn = nil
	}
	return nil
}

func (agent *SFTPTransferAgent) InboundPath() string {
	return agent.cfg.InboundPath
}

func (agent *SFTPTransferAgent) OutboundPath() string {
	return agent.cfg.OutboundPath
}

func (agent *SFTPTransferAgent) ReturnPath() string {
	return agent.cfg.ReturnPath
}

func (agent *SFTPTransferAgent) Hostname() string {
	if agent.cfg.SFTP == nil {
		return ""
	}
	return hostname(agent.cfg.SFTP.Hostname)
}

// Delete removes path. Missing files are not an error.
func (agent *SFTPTransferAgent) Delete(path string) error {
	agent.mu.Lock()
	defer agent.mu.Unlock()

	conn, err := agent.connection()
	if err != nil {
		return err
	}

	info, err := conn.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("sftp: delete stat: %v", err)
	}
	if info != nil {
		if err := conn.Remove(path); err != nil {
			return fmt.Errorf("sftp: delete: %v", err)
		}
	}
	return nil
}

// UploadFile writes f into OutboundPath, creating the directory when missing.
// f.Contents is always closed.
func (agent *SFTPTransferAgent) UploadFile(f File) error {
	defer f.Close()

	agent.mu.Lock()
	defer agent.mu.Unlock()

	conn, err := agent.connection()
	if err != nil {
		return err
	}

	info, err := conn.Stat(agent.cfg.OutboundPath)
	if info == nil || (err != nil && os.IsNotExist(err)) {
		if err := conn.MkdirAll(agent.cfg.OutboundPath); err != nil {
			return fmt.Errorf("sftp: problem creating parent dir %s: %v", agent.cfg.OutboundPath, err)
		}
	}

	// Only the base of f.Filename is used so writes stay inside OutboundPath.
	path := filepath.Join(agent.cfg.OutboundPath, filepath.Base(f.Filename))
	fd, err := conn.Create(path)
	if err != nil {
		return fmt.Errorf("sftp: problem creating %s: %v", path, err)
	}
	n, err := io.Copy(fd, f.Contents)
	if n == 0 || err != nil {
		fd.Close()
		return fmt.Errorf("sftp: problem copying (n=%d) %s: %v", n, f.Filename, err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("sftp: problem closing %s: %v", f.Filename, err)
	}
	if err := conn.Chmod(path, 0600); err != nil {
		return fmt.Errorf("sftp: problem chmod %s: %v", f.Filename, err)
	}
	return nil
}

func (agent *SFTPTransferAgent) GetInboundFiles() ([]File, error) {
	return agent.readFiles(agent.cfg.InboundPath)
}

func (agent *SFTPTransferAgent) GetReturnFiles() ([]File, error) {
	return agent.readFiles(agent.cfg.ReturnPath)
}

// readFiles downloads every regular file directly inside dir.
func (agent *SFTPTransferAgent) readFiles(dir string) ([]File, error) {
	agent.mu.Lock()
	defer agent.mu.Unlock()

	conn, err := agent.connection()
	if err != nil {
		return nil, err
	}

	infos, err := conn.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sftp: readdir %s: %v", dir, err)
	}

	var files []File
	for i := range infos {
		if infos[i].IsDir() {
			continue
		}
		bs, err := readRemoteFile(conn, filepath.Join(dir, infos[i].Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, File{
			Filename: infos[i].Name(),
			Contents: ioutil.NopCloser(bytes.NewReader(bs)),
		})
	}
	return files, nil
}

func readRemoteFile(conn *sftp.Client, path string) ([]byte, error) {
	fd, err := conn.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sftp: open %s: %v", path, err)
	}
	defer fd.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, fd)
	if err != nil && !strings.Contains(err.Error(), sftp.ErrInternalInconsistency.Error()) {
		return nil, fmt.Errorf("sftp: read (n=%d) %s: %v", n, path, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("sftp: read (n=%d) on %s", n, path)
	}
	return buf.Bytes(), nil
}
