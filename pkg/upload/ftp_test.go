// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package upload

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/moov-io/achfile/pkg/config"
	"github.com/moov-io/base/docker"

	"github.com/go-kit/kit/log"
	"github.com/ory/dockertest/v3"
	dc "github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
)

func TestTLSDialOption(t *testing.T) {
	opt, err := tlsDialOption("")
	require.NoError(t, err)
	require.Nil(t, opt)

	_, err = tlsDialOption(filepath.Join("testdata", "missing.pem"))
	require.Error(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "junk.pem")
	require.NoError(t, ioutil.WriteFile(path, []byte("not a certificate"), 0600))
	_, err = tlsDialOption(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no certificates found")
}

func TestFTP__InvalidDelete(t *testing.T) {
	agent := &FTPTransferAgent{cfg: config.ODFI{FTP: &config.FTP{}}, logger: log.NewNopLogger()}
	require.Error(t, agent.Delete(""))
	require.Error(t, agent.Delete("inbound/"))
}

type ftpDeployment struct {
	res   *dockertest.Resource
	agent *FTPTransferAgent
	dir   string
}

func (d *ftpDeployment) close(t *testing.T) {
	require.NoError(t, d.agent.Close())
	require.NoError(t, d.res.Close())
}

// spawnFTP launches a pure-ftpd container sharing a local directory, so tests
// can seed and inspect remote files.
func spawnFTP(t *testing.T) *ftpDeployment {
	if testing.Short() {
		t.Skip("-short flag enabled")
	}
	if !docker.Enabled() {
		t.Skip("Docker not enabled")
	}

	dir := t.TempDir()
	for _, sub := range []string{"inbound", "outbound", "returned"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0777))
	}

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	// passive mode data ports are published on the same host ports
	bindings := make(map[dc.Port][]dc.PortBinding)
	exposed := []string{"21/tcp"}
	for p := 30000; p <= 30009; p++ {
		port := fmt.Sprintf("%d/tcp", p)
		exposed = append(exposed, port)
		bindings[dc.Port(port)] = []dc.PortBinding{{HostIP: "127.0.0.1", HostPort: fmt.Sprintf("%d", p)}}
	}
	bindings["21/tcp"] = []dc.PortBinding{{HostIP: "127.0.0.1"}}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository:   "stilliard/pure-ftpd",
		ExposedPorts: exposed,
		PortBindings: bindings,
		Tag:          "latest",
		Env: []string{
			"PUBLICHOST=localhost",
			"FTP_USER_NAME=moov",
			"FTP_USER_PASS=password",
			"FTP_USER_HOME=/home/moov",
		},
		Mounts: []string{fmt.Sprintf("%s:/home/moov", dir)},
	})
	require.NoError(t, err)

	cfg := config.ODFI{
		RoutingNumber: "121042882",
		InboundPath:   "inbound/",
		OutboundPath:  "outbound/",
		ReturnPath:    "returned/",
		FTP: &config.FTP{
			Hostname:    fmt.Sprintf("localhost:%s", resource.GetPort("21/tcp")),
			Username:    "moov",
			Password:    "password",
			DialTimeout: 5 * time.Second,
		},
	}

	var agent *FTPTransferAgent
	err = pool.Retry(func() error {
		agent, err = newFTPTransferAgent(log.NewNopLogger(), cfg)
		return err
	})
	if err != nil {
		resource.Close()
		t.Fatal(err)
	}
	return &ftpDeployment{res: resource, agent: agent, dir: dir}
}

func TestFTP__Agent(t *testing.T) {
	deployment := spawnFTP(t)
	defer deployment.close(t)

	agent := deployment.agent
	require.NoError(t, agent.Ping())
	require.Equal(t, "localhost", agent.Hostname())

	// upload
	err := agent.UploadFile(File{
		Filename: "../../20200528-076401251-1.ach",
		Contents: ioutil.NopCloser(strings.NewReader("nacha contents")),
	})
	require.NoError(t, err)

	bs, err := ioutil.ReadFile(filepath.Join(deployment.dir, "outbound", "20200528-076401251-1.ach"))
	require.NoError(t, err)
	require.Equal(t, "nacha contents", string(bs))

	// download
	path := filepath.Join(deployment.dir, "inbound", "return.ach")
	require.NoError(t, ioutil.WriteFile(path, []byte("return contents"), 0644))

	files, err := agent.GetInboundFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "return.ach", files[0].Filename)

	bs, err = ioutil.ReadAll(files[0].Contents)
	require.NoError(t, err)
	require.Equal(t, "return contents", string(bs))

	files, err = agent.GetReturnFiles()
	require.NoError(t, err)
	require.Empty(t, files)

	// delete
	require.NoError(t, agent.Delete("inbound/return.ach"))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
