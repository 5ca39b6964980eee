package cmd

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stratoshell/stratoshell/internal/testutil"
	"github.com/stratoshell/stratoshell/pkg/hwc"
	"github.com/stratoshell/stratoshell/pkg/logger"
	"github.com/stratoshell/stratoshell/pkg/signer"
	"github.com/stretchr/testify/suite"
)

const testConfig = `
general:
  enable_file_logger: false
hwc:
  domain: example.com
`

func ExecuteCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	defer func() {
		if r := recover(); r != nil {
			logger.Get().Errorf("Panic occurred: %v", r)
			err = fmt.Errorf("panic occurred: %v", r)
		}
	}()

	_, err = root.ExecuteC()
	_ = logger.Get().Sync()
	return buf.String(), err
}

type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = rt.target.Scheme
	out.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(out)
}

type cloudRequest struct {
	Method string
	Host   string
	URI    string
	Body   string
}

type CmdTestSuite struct {
	suite.Suite
	configPath string
	cleanup    func()

	mu       sync.Mutex
	routes   map[string]string
	statuses map[string]int
	requests []cloudRequest
}

func TestCmdTestSuite(t *testing.T) {
	suite.Run(t, new(CmdTestSuite))
}

func (s *CmdTestSuite) SetupSuite() {
	var err error
	s.configPath, s.cleanup, err = testutil.WriteStringToTempFileWithExtension(testConfig, ".yaml")
	s.Require().NoError(err)
}

func (s *CmdTestSuite) TearDownSuite() {
	s.cleanup()
}

func (s *CmdTestSuite) SetupTest() {
	viper.Reset()
	s.routes = map[string]string{
		"GET iam.r1.example.com/v3/auth/projects": `{"projects":[{"id":"pid-1","name":"r1","enabled":true}]}`,
	}
	s.statuses = map[string]int{}
	s.requests = nil

	server := httptest.NewServer(http.HandlerFunc(s.handle))
	s.T().Cleanup(server.Close)
	target, err := url.Parse(server.URL)
	s.Require().NoError(err)

	original := newClient
	newClient = func() (*hwc.Client, error) {
		creds, err := signer.NewCredentials("AKTEST", "SKTEST")
		if err != nil {
			return nil, err
		}
		client, err := hwc.NewClient(creds)
		if err != nil {
			return nil, err
		}
		client.Domain = viper.GetString(keyDomain)
		client.HTTPClient = &http.Client{Transport: rewriteTransport{target: target}}
		return client, nil
	}
	s.T().Cleanup(func() { newClient = original })
}

func (s *CmdTestSuite) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.Host + r.URL.RequestURI()

	s.mu.Lock()
	s.requests = append(s.requests, cloudRequest{Method: r.Method, Host: r.Host, URI: r.URL.RequestURI(), Body: string(body)})
	resp, ok := s.routes[key]
	status := s.statuses[key]
	s.mu.Unlock()

	if !ok {
		http.Error(w, "no route for "+key, http.StatusTeapot)
		return
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp)
}

func (s *CmdTestSuite) on(method, hostURI string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+hostURI] = body
	s.statuses[method+" "+hostURI] = status
}

func (s *CmdTestSuite) lastRequest() cloudRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Require().NotEmpty(s.requests)
	return s.requests[len(s.requests)-1]
}

func (s *CmdTestSuite) run(args ...string) (string, error) {
	return ExecuteCommand(NewRootCmd(), append([]string{"--config=" + s.configPath}, args...)...)
}

func (s *CmdTestSuite) TestProjectID() {
	out, err := s.run("project-id", "--region", "r1")
	s.Require().NoError(err)
	s.Equal("pid-1\n", out)
}

func (s *CmdTestSuite) TestRegionIsRequired() {
	_, err := s.run("vpc", "list")
	s.Require().Error(err)
	s.Contains(err.Error(), "region is required")
}

func (s *CmdTestSuite) TestRegionFromEnvironment() {
	s.T().Setenv("STRATOSHELL_HWC_REGION", "r1")
	out, err := s.run("project-id")
	s.Require().NoError(err)
	s.Equal("pid-1\n", out)
}

func (s *CmdTestSuite) TestVPCListTable() {
	s.on("GET", "vpc.r1.example.com/v1/pid-1/vpcs", http.StatusOK,
		`{"vpcs":[{"id":"vpc-1","name":"default","cidr":"192.168.0.0/16","status":"OK"}]}`)

	out, err := s.run("vpc", "list", "--region", "r1")
	s.Require().NoError(err)
	s.Contains(out, "CIDR")
	s.Contains(out, "vpc-1")
	s.Contains(out, "192.168.0.0/16")
}

func (s *CmdTestSuite) TestVPCListJSONAndYAML() {
	s.on("GET", "vpc.r1.example.com/v1/pid-1/vpcs", http.StatusOK, `{"vpcs":[{"id":"vpc-1","name":"default"}]}`)

	out, err := s.run("vpc", "list", "--region", "r1", "-o", "json")
	s.Require().NoError(err)
	s.JSONEq(`[{"id":"vpc-1","name":"default"}]`, out)

	viper.Reset()
	out, err = s.run("vpc", "list", "--region", "r1", "--output", "yaml")
	s.Require().NoError(err)
	s.Equal("- id: vpc-1\n  name: default\n", out)
}

func (s *CmdTestSuite) TestUnknownOutputFormat() {
	s.on("GET", "vpc.r1.example.com/v1/pid-1/vpcs", http.StatusOK, `{"vpcs":[]}`)
	_, err := s.run("vpc", "list", "--region", "r1", "-o", "xml")
	s.Require().Error(err)
	s.Contains(err.Error(), `unsupported output format "xml"`)
}

func (s *CmdTestSuite) TestEmptyListMessage() {
	s.on("GET", "nat.r1.example.com/v2/pid-1/nat_gateways", http.StatusOK, `{"nat_gateways":[]}`)
	out, err := s.run("nat", "list", "--region", "r1")
	s.Require().NoError(err)
	s.Contains(out, "No resources found.")
}

func (s *CmdTestSuite) TestSubnetListRequiresVPC() {
	_, err := s.run("subnet", "list", "--region", "r1")
	s.Require().Error(err)
	s.Contains(err.Error(), `"vpc" not set`)

	s.on("GET", "vpc.r1.example.com/v1/pid-1/subnets?vpc_id=vpc-1", http.StatusOK,
		`{"subnets":[{"id":"sn-1","name":"a","cidr":"10.0.0.0/24","vpc_id":"vpc-1"}]}`)
	viper.Reset()
	out, err := s.run("subnet", "list", "--region", "r1", "--vpc", "vpc-1")
	s.Require().NoError(err)
	s.Contains(out, "sn-1")
}

func (s *CmdTestSuite) TestEIPListPassesPagination() {
	s.on("GET", "vpc.r1.example.com/v3/pid-1/eip/publicips?limit=5", http.StatusOK,
		`{"publicips":[{"id":"eip-1","public_ip_address":"1.2.3.4","status":"ACTIVE"}]}`)

	out, err := s.run("eip", "list", "--region", "r1", "--limit", "5")
	s.Require().NoError(err)
	s.Contains(out, "1.2.3.4")
}

func (s *CmdTestSuite) TestEIPDeleteShowsFailureBody() {
	s.on("DELETE", "vpc.r1.example.com/v3/pid-1/eip/publicips/eip-1", http.StatusConflict, `{"error_msg":"in use"}`)

	out, err := s.run("eip", "delete", "eip-1", "--region", "r1")
	s.Require().Error(err)
	s.Contains(err.Error(), "status 409")
	s.Contains(out, "in use")
}

func (s *CmdTestSuite) TestECSCreateFromFlags() {
	s.on("POST", "ecs.r1.example.com/v1/pid-1/cloudservers", http.StatusOK, `{"job_id":"job-1"}`)

	out, err := s.run("ecs", "create", "--region", "r1",
		"--name", "web-1", "--image", "img-1", "--flavor", "s6.small.1",
		"--vpc", "vpc-1", "--subnet", "sn-1", "--eip")
	s.Require().NoError(err)
	s.Contains(out, "job-1")

	req := s.lastRequest()
	s.Equal("POST", req.Method)
	s.Contains(req.Body, `"imageRef":"img-1"`)
	s.Contains(req.Body, `"name":"web-1"`)
	s.Contains(req.Body, `"ip_type":"5_bgp"`)
}

func (s *CmdTestSuite) TestECSCreateFromBodyFile() {
	body := `{"server":{"name":"raw"}}`
	path, cleanup, err := testutil.WriteStringToTempFileWithExtension(body, ".json")
	s.Require().NoError(err)
	defer cleanup()
	s.on("POST", "ecs.r1.example.com/v1/pid-1/cloudservers", http.StatusBadRequest, `{"error":"bad image"}`)

	out, err := s.run("ecs", "create", "--region", "r1", "--body", path)
	s.Require().Error(err)
	s.Contains(out, "bad image")
	s.Equal(body, s.lastRequest().Body)
}

func (s *CmdTestSuite) TestECSStopHard() {
	s.on("POST", "ecs.r1.example.com/v1/pid-1/cloudservers/action", http.StatusOK, `{"job_id":"job-2"}`)

	_, err := s.run("ecs", "stop", "srv-1", "--hard", "--region", "r1")
	s.Require().NoError(err)
	s.JSONEq(`{"os-stop":{"servers":[{"id":"srv-1"}],"type":"HARD"}}`, s.lastRequest().Body)
}

func (s *CmdTestSuite) TestMissingCredentials() {
	newClient = func() (*hwc.Client, error) {
		return nil, fmt.Errorf("cloud credentials missing")
	}
	_, err := s.run("vpc", "list", "--region", "r1")
	s.Require().Error(err)
	s.Contains(err.Error(), "cloud credentials missing")
}

func (s *CmdTestSuite) TestSSHExec() {
	server := testutil.StartSSHServer(s.T(), "deploy", "pw")

	out, err := s.run("ssh", "exec", "--host", server.Host, "--port", fmt.Sprint(server.Port),
		"--user", "deploy", "--password", "pw", "--", "echo", "hi")
	s.Require().NoError(err)
	s.Contains(out, "hi\r\n")
}

func (s *CmdTestSuite) TestSSHExecNonZeroExit() {
	server := testutil.StartSSHServer(s.T(), "deploy", "pw")

	_, err := s.run("ssh", "exec", "--host", server.Host, "--port", fmt.Sprint(server.Port),
		"--user", "deploy", "--password", "pw", "--", "exit 4")
	s.Require().Error(err)
	s.Contains(err.Error(), "exited with status 4")
}

func (s *CmdTestSuite) TestSSHShell() {
	server := testutil.StartSSHServer(s.T(), "root", "pw")
	stdin, feed := io.Pipe()
	defer feed.Close()
	go func() {
		_, _ = io.WriteString(feed, "echo hello\n\n~resize 100 30\n~ctrl c\nexit 0\n")
	}()

	root := NewRootCmd()
	root.SetIn(stdin)
	out, err := ExecuteCommand(root, "--config="+s.configPath, "ssh", "shell", "--host", server.Host,
		"--port", fmt.Sprint(server.Port), "--password", "pw", "--session-id", "cli-1")
	s.Require().NoError(err)
	s.Contains(out, "session cli-1")
	s.Contains(out, "hello")
	s.Contains(out, "^C")
	s.Contains(out, "[channel closed]")
	s.True(strings.Index(out, "hello") < strings.Index(out, "[channel closed]"))
	s.Eventually(func() bool {
		for _, w := range server.WindowChanges() {
			if w == (testutil.WindowChange{Cols: 100, Rows: 30}) {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *CmdTestSuite) TestSSHShellSurvivesLocalCommandTypos() {
	server := testutil.StartSSHServer(s.T(), "root", "pw")
	stdin, feed := io.Pipe()
	defer feed.Close()
	go func() {
		_, _ = io.WriteString(feed, "~ctrl z\n~resize wide 30\n~bogus\necho still alive\nexit 0\n")
	}()

	root := NewRootCmd()
	root.SetIn(stdin)
	out, err := ExecuteCommand(root, "--config="+s.configPath, "ssh", "shell", "--host", server.Host,
		"--port", fmt.Sprint(server.Port), "--password", "pw")
	s.Require().NoError(err)
	s.Contains(out, `usage: ~ctrl c|d|u (got "z")`)
	s.Contains(out, `invalid column count "wide"`)
	s.Contains(out, "unknown local command ~bogus")
	s.Contains(out, "still alive")
	s.Contains(out, "[channel closed]")
}
