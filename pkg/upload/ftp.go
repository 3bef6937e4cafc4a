// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"path/filepath"
	"strings"
	"sync"

	"github.com/moov-io/achfile/pkg/config"

	"github.com/go-kit/kit/log"
	"github.com/jlaffaye/ftp"
)

// FTPTransferAgent is an FTP implementation of Agent
type FTPTransferAgent struct {
	conn   *ftp.ServerConn
	cfg    config.ODFI
	logger log.Logger
	mu     sync.Mutex // protects all read/write methods
}

func newFTPTransferAgent(logger log.Logger, cfg config.ODFI) (*FTPTransferAgent, error) {
	if cfg.FTP == nil {
		return nil, errors.New("nil FTP config")
	}
	if err := rejectOutboundIPRange(cfg.SplitAllowedIPs(), cfg.FTP.Hostname); err != nil {
		return nil, fmt.Errorf("ftp: %s is not allowed: %v", cfg.FTP.Hostname, err)
	}

	agent := &FTPTransferAgent{
		cfg:    cfg,
		logger: logger,
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()

	_, err := agent.connection()
	return agent, err
}

// connection returns a connected ftp.ServerConn, dialing again when the
// existing connection fails a NOOP.
//
// connection must be called with agent.mu held as the FTP client is not
// goroutine-safe.
func (agent *FTPTransferAgent) connection() (*ftp.ServerConn, error) {
	if agent == nil || agent.cfg.FTP == nil {
		return nil, errors.New("nil agent / config")
	}

	if agent.conn != nil {
		if err := agent.conn.NoOp(); err == nil {
			return agent.conn, nil
		}
		agent.conn.Quit()
		agent.conn = nil
	}

	opts := []ftp.DialOption{
		ftp.DialWithTimeout(agent.cfg.FTP.Timeout()),
		ftp.DialWithDisabledEPSV(agent.cfg.FTP.DisableEPSV),
	}
	tlsOpt, err := tlsDialOption(agent.cfg.FTP.CAFile)
	if err != nil {
		return nil, err
	}
	if tlsOpt != nil {
		opts = append(opts, *tlsOpt)
	}

	conn, err := ftp.Dial(agent.cfg.FTP.Hostname, opts...)
	if err != nil {
		return nil, fmt.Errorf("ftp: dial %s: %v", agent.cfg.FTP.Hostname, err)
	}
	if err := conn.Login(agent.cfg.FTP.Username, agent.cfg.FTP.Password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("ftp: login as %s: %v", agent.cfg.FTP.Username, err)
	}
	agent.conn = conn

	return agent.conn, nil
}

func tlsDialOption(caFilePath string) (*ftp.DialOption, error) {
	if caFilePath == "" {
		return nil, nil
	}
	bs, err := ioutil.ReadFile(caFilePath)
	if err != nil {
		return nil, fmt.Errorf("tlsDialOption: failed to read %s: %v", caFilePath, err)
	}
	pool, err := x509.SystemCertPool()
	if pool == nil || err != nil {
		pool = x509.NewCertPool()
	}
	if ok := pool.AppendCertsFromPEM(bs); !ok {
		return nil, fmt.Errorf("tlsDialOption: no certificates found in %s", caFilePath)
	}
	opt := ftp.DialWithTLS(&tls.Config{
		RootCAs: pool,
	})
	return &opt, nil
}

func (agent *FTPTransferAgent) Ping() error {
	if agent == nil {
		return errors.New("nil FTPTransferAgent")
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()

	conn, err := agent.connection()
	if err != nil {
		return err
	}
	return conn.NoOp()
}

func (agent *FTPTransferAgent) Close() error {
	if agent == nil {
		return nil
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()

	if agent.conn == nil {
		return nil
	}
	err := agent.conn.Quit()
	agent.conn = nil
	return err
}

func (agent *FTPTransferAgent) InboundPath() string {
	return agent.cfg.InboundPath
}

func (agent *FTPTransferAgent) OutboundPath() string {
	return agent.cfg.OutboundPath
}

func (agent *FTPTransferAgent) ReturnPath() string {
	return agent.cfg.ReturnPath
}

func (agent *FTPTransferAgent) Hostname() string {
	return hostname(agent.cfg.FTP.Hostname)
}

func (agent *FTPTransferAgent) Delete(path string) error {
	if path == "" || strings.HasSuffix(path, "/") {
		return fmt.Errorf("ftp: invalid path %q", path)
	}

	agent.mu.Lock()
	defer agent.mu.Unlock()

	conn, err := agent.connection()
	if err != nil {
		return err
	}
	return conn.Delete(path)
}

// UploadFile writes f into OutboundPath. f.Contents is always closed.
func (agent *FTPTransferAgent) UploadFile(f File) error {
	defer f.Close()

	agent.mu.Lock()
	defer agent.mu.Unlock()

	conn, err := agent.connection()
	if err != nil {
		return err
	}

	wd, err := conn.CurrentDir()
	if err != nil {
		return err
	}
	if err := conn.ChangeDir(agent.cfg.OutboundPath); err != nil {
		return fmt.Errorf("ftp: cd %s: %v", agent.cfg.OutboundPath, err)
	}
	defer agent.changeDir(conn, wd)

	// Only the base of f.Filename is used so writes stay inside OutboundPath.
	if err := conn.Stor(filepath.Base(f.Filename), f.Contents); err != nil {
		return fmt.Errorf("ftp: upload %s: %v", f.Filename, err)
	}
	return nil
}

func (agent *FTPTransferAgent) GetInboundFiles() ([]File, error) {
	return agent.readFiles(agent.cfg.InboundPath)
}

func (agent *FTPTransferAgent) GetReturnFiles() ([]File, error) {
	return agent.readFiles(agent.cfg.ReturnPath)
}

func (agent *FTPTransferAgent) readFiles(dir string) ([]File, error) {
	agent.mu.Lock()
	defer agent.mu.Unlock()

	conn, err := agent.connection()
	if err != nil {
		return nil, err
	}

	wd, err := conn.CurrentDir()
	if err != nil {
		return nil, err
	}
	if err := conn.ChangeDir(dir); err != nil {
		return nil, fmt.Errorf("ftp: cd %s: %v", dir, err)
	}
	defer agent.changeDir(conn, wd)

	items, err := conn.NameList("")
	if err != nil {
		return nil, err
	}
	var files []File
	for i := range items {
		resp, err := conn.Retr(items[i])
		if err != nil {
			return nil, fmt.Errorf("ftp: retrieving %s: %v", items[i], err)
		}
		r, err := readResponse(resp)
		if err != nil {
			return nil, fmt.Errorf("ftp: reading %s: %v", items[i], err)
		}
		files = append(files, File{
			Filename: filepath.Base(items[i]),
			Contents: r,
		})
	}
	return files, nil
}

func (agent *FTPTransferAgent) changeDir(conn *ftp.ServerConn, dir string) {
	if err := conn.ChangeDir(dir); err != nil {
		agent.logger.Log("ftp", fmt.Sprintf("returning to %s: %v", dir, err))
	}
}

func readResponse(resp *ftp.Response) (io.ReadCloser, error) {
	defer resp.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, resp)
	if n == 0 || err != nil {
		return nil, fmt.Errorf("n=%d error=%v", n, err)
	}
	return ioutil.NopCloser(&buf), nil
}

// hostname strips the port from addr.
func hostname(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
