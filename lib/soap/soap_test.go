package soap

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"outbound-custom/lib/mapped"

	"github.com/antchfx/xmlquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recorded struct {
	path   string
	header http.Header
	body   string
}

type fakeService struct {
	server *httptest.Server

	mutex    sync.Mutex
	calls    []recorded
	response []byte
	status   int
	delay    time.Duration
}

func newFakeService(t *testing.T, responseFile string) *fakeService {
	t.Helper()

	wsdl, err := os.ReadFile("testdata/service.wsdl")
	require.Nil(t, err)
	response, err := os.ReadFile(responseFile)
	require.Nil(t, err)

	svc := &fakeService{response: response, status: http.StatusOK}
	var definitions string
	svc.server = httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			svc.mutex.Lock()
			body := definitions
			svc.mutex.Unlock()
			w.Header().Set("Content-Type", "text/xml")
			w.Write([]byte(body))
			return
		}

		body, _ := io.ReadAll(r.Body)

		svc.mutex.Lock()
		svc.calls = append(svc.calls, recorded{path: r.URL.Path, header: r.Header.Clone(), body: string(body)})
		delay, status, response := svc.delay, svc.status, svc.response
		svc.mutex.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(status)
		w.Write(response)
	}))
	svc.server.Start()
	svc.mutex.Lock()
	definitions = strings.ReplaceAll(string(wsdl), "{{endpoint}}", svc.server.URL)
	svc.mutex.Unlock()
	t.Cleanup(svc.server.Close)
	return svc
}

func (s *fakeService) respond(status int, response []byte, delay time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.status = status
	if response != nil {
		s.response = response
	}
	s.delay = delay
}

func (s *fakeService) vars(function string) map[string]any {
	return map[string]any{
		"url":      s.server.URL + "/login/ws/ws.asmx?WSDL",
		"function": function,
	}
}

func (s *fakeService) lastCall(t *testing.T) recorded {
	t.Helper()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	require.NotEmpty(t, s.calls)
	return s.calls[len(s.calls)-1]
}

func handle(t *testing.T, vars map[string]any) map[string]any {
	t.Helper()
	client := NewClient(nil)
	defer client.Close()
	event, err := client.Handle(context.Background(), vars)
	require.Nil(t, err)
	return event
}

func TestUnsupportedFunction(t *testing.T) {
	svc := newFakeService(t, "testdata/success.xml")
	client := NewClient(nil)
	defer client.Close()

	event, err := client.Handle(context.Background(), svc.vars("someUnsupportedFunction"))
	require.ErrorIs(t, err, ErrUnsupportedFunction)
	require.Equal(t, "Unsupported SOAP function specified", ErrUnsupportedFunction.Error())
	require.Nil(t, event)
}

func TestDottedFunction(t *testing.T) {
	svc := newFakeService(t, "testdata/success.xml")
	event := handle(t, svc.vars("LeadService.LeadServiceSoap.AddLead"))
	require.Equal(t, "success", event["outcome"])
}

func TestSecurity(t *testing.T) {
	cases := []struct {
		name   string
		vars   map[string]any
		verify func(t *testing.T, call recorded)
	}{
		{
			name: "basic",
			vars: map[string]any{"basic_username": "bob", "basic_password": "sekret"},
			verify: func(t *testing.T, call recorded) {
				require.Equal(t, "Basic Ym9iOnNla3JldA==", call.header.Get("Authorization"))
				require.NotContains(t, call.body, "wsse:Security")
			},
		},
		{
			name: "bearer",
			vars: map[string]any{"bearer_token": "crunchy"},
			verify: func(t *testing.T, call recorded) {
				require.Equal(t, "Bearer crunchy", call.header.Get("Authorization"))
			},
		},
		{
			name: "basic wins over bearer",
			vars: map[string]any{"basic_username": "bob", "basic_password": "sekret", "bearer_token": "crunchy"},
			verify: func(t *testing.T, call recorded) {
				require.Equal(t, "Basic Ym9iOnNla3JldA==", call.header.Get("Authorization"))
			},
		},
		{
			name: "ws password text",
			vars: map[string]any{"wss_username": "bob", "wss_password": "sekret"},
			verify: func(t *testing.T, call recorded) {
				require.Empty(t, call.header.Get("Authorization"))
				require.Contains(t, call.body, "<wsse:Username>bob</wsse:Username>")
				require.Contains(t, call.body, `<wsse:Password Type="`+passwordTextType+`">sekret</wsse:Password>`)
				require.NotContains(t, call.body, "wsse:Nonce")
			},
		},
		{
			name: "ws password digest",
			vars: map[string]any{"wss_username": "bob", "wss_password": "sekret", "wss_digest_password": true},
			verify: func(t *testing.T, call recorded) {
				require.Contains(t, call.body, "<wsse:Username>bob</wsse:Username>")
				require.Contains(t, call.body, `<wsse:Password Type="`+passwordDigestType+`">`)
				require.NotContains(t, call.body, "sekret")
				verifyDigest(t, call.body, "sekret")
			},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			svc := newFakeService(t, "testdata/success.xml")
			vars := svc.vars("AddLead")
			for k, v := range test.vars {
				vars[k] = v
			}
			event := handle(t, vars)
			require.Equal(t, "success", event["outcome"])
			test.verify(t, svc.lastCall(t))
		})
	}
}

func verifyDigest(t *testing.T, body, password string) {
	t.Helper()
	doc, err := xmlquery.Parse(strings.NewReader(body))
	require.Nil(t, err)

	token := xmlquery.FindOne(doc, "//*[local-name()='UsernameToken']")
	require.NotNil(t, token)
	nonce, err := base64.StdEncoding.DecodeString(xmlquery.FindOne(token, "./*[local-name()='Nonce']").InnerText())
	require.Nil(t, err)
	created := xmlquery.FindOne(token, "./*[local-name()='Created']").InnerText()
	digest := xmlquery.FindOne(token, "./*[local-name()='Password']").InnerText()

	h := sha1.New()
	h.Write(nonce)
	h.Write([]byte(created))
	h.Write([]byte(password))
	require.Equal(t, base64.StdEncoding.EncodeToString(h.Sum(nil)), digest)

	_, err = time.Parse(wssTimeFormat, created)
	require.Nil(t, err)
}

func TestVersions(t *testing.T) {
	cases := []struct {
		version     string
		path        string
		envelope    string
		contentType string
		soapAction  string
	}{
		{
			path:        "/login/ws/ws.asmx",
			envelope:    `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">`,
			contentType: "text/xml; charset=utf-8",
			soapAction:  `"http://donkey/ws.asmx/AddLead"`,
		},
		{
			version:     "1.1",
			path:        "/login/ws/ws.asmx",
			envelope:    `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">`,
			contentType: "text/xml; charset=utf-8",
			soapAction:  `"http://donkey/ws.asmx/AddLead"`,
		},
		{
			version:     " 1.2 ",
			path:        "/login/ws/ws12.asmx",
			envelope:    `<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">`,
			contentType: `application/soap+xml; charset=utf-8; action="http://donkey/ws.asmx/AddLead12"`,
		},
	}

	for _, test := range cases {
		svc := newFakeService(t, "testdata/success.xml")
		vars := svc.vars("AddLead")
		if test.version != "" {
			vars["version"] = test.version
		}
		event := handle(t, vars)
		require.Equal(t, "success", event["outcome"])

		call := svc.lastCall(t)
		require.Equal(t, test.path, call.path)
		require.Contains(t, call.body, test.envelope)
		require.Equal(t, test.contentType, call.header.Get("Content-Type"))
		require.Equal(t, test.soapAction, call.header.Get("SOAPAction"))
	}
}

func TestArguments(t *testing.T) {
	cases := []struct {
		name     string
		function string
		vars     map[string]any
		contains []string
		excludes []string
	}{
		{
			name:     "plain",
			function: "AddLead",
			vars: map[string]any{
				"arg.Lead.FirstName": "Bob",
				"arg.Lead.ZipCode":   mapped.Valid("78704-1234", "78704-1234"),
			},
			contains: []string{
				`<AddLead xmlns="http://donkey/ws.asmx/"><Lead><ZipCode>78704-1234</ZipCode><FirstName>Bob</FirstName></Lead></AddLead>`,
			},
		},
		{
			name:     "attributes",
			function: "AddLead",
			vars: map[string]any{
				"arg.Lead.attributes.SomethingSomethingId": "42",
				"arg.Lead.FirstName":                       "Bob",
			},
			contains: []string{`<Lead SomethingSomethingId="42"><FirstName>Bob</FirstName></Lead>`},
		},
		{
			name:     "value key",
			function: "AddLead",
			vars: map[string]any{
				"arg.Lead.FirstName.#value":          "Bob",
				"arg.Lead.FirstName.attributes.lang": "en",
			},
			contains: []string{`<FirstName lang="en">Bob</FirstName>`},
		},
		{
			name:     "compact arrays",
			function: "AddLead",
			vars: map[string]any{
				"arg.Lead.bar.0": "bip",
				"arg.Lead.bar.1": nil,
				"arg.Lead.bar.2": "bap",
			},
			contains: []string{`<Lead><bar>bip</bar><bar>bap</bar></Lead>`},
		},
		{
			name:     "ascii",
			function: "AddLead",
			vars: map[string]any{
				"send_ascii":         "true",
				"arg.Lead.FirstName": "Böb",
			},
			contains: []string{"<FirstName>Bob</FirstName>"},
		},
		{
			name:     "utf-8",
			function: "AddLead",
			vars: map[string]any{
				"send_ascii":         false,
				"arg.Lead.FirstName": "Böb",
			},
			contains: []string{"<FirstName>Böb</FirstName>"},
		},
		{
			name:     "xml encoded into string argument",
			function: "AddLeadXML",
			vars: map[string]any{
				"arg.LeadXML.Lead.FirstName": "Bob",
				"arg.LeadXML.Lead.ZipCode":   "78704-1234",
			},
			contains: []string{
				"&lt;FirstName&gt;Bob&lt;/FirstName&gt;",
				"&lt;ZipCode&gt;78704-1234&lt;/ZipCode&gt;",
			},
			excludes: []string{"<FirstName>"},
		},
		{
			name:     "cdata",
			function: "AddLeadXML",
			vars: map[string]any{
				"arg.LeadXML": "<![CDATA[Hello World! & <Hello Me!>]]>",
			},
			contains: []string{"<LeadXML><![CDATA[Hello World! & <Hello Me!>]]></LeadXML>"},
		},
		{
			name:     "escaped text",
			function: "AddLeadXML",
			vars: map[string]any{
				"arg.LeadXML": "Hello & <Me>",
			},
			contains: []string{"<LeadXML>Hello &amp; &lt;Me&gt;</LeadXML>"},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			svc := newFakeService(t, "testdata/success.xml")
			vars := svc.vars(test.function)
			for k, v := range test.vars {
				vars[k] = v
			}
			handle(t, vars)

			body := svc.lastCall(t).body
			for _, expected := range test.contains {
				require.Contains(t, body, expected)
			}
			for _, unexpected := range test.excludes {
				require.NotContains(t, body, unexpected)
			}
		})
	}
}

func TestHeaders(t *testing.T) {
	svc := newFakeService(t, "testdata/success.xml")
	vars := svc.vars("AddLead")
	vars["soap_header.SessionHeader.sessionId"] = 88774421
	vars["soap_header.SessionHeader@xmlns"] = "urn:foo.bar"
	vars["soap_header.OtherHeader.Id"] = 4321
	vars["soap_header.OtherHeader@xmlns"] = "urn:foo.other"
	handle(t, vars)

	body := svc.lastCall(t).body
	require.Contains(t, body, `<SessionHeader xmlns="urn:foo.bar"><sessionId>88774421</sessionId></SessionHeader>`)
	require.Contains(t, body, `<OtherHeader xmlns="urn:foo.other"><Id>4321</Id></OtherHeader>`)
}

func TestNoHeaderWithoutContent(t *testing.T) {
	svc := newFakeService(t, "testdata/success.xml")
	handle(t, svc.vars("AddLead"))
	require.NotContains(t, svc.lastCall(t).body, "soap:Header")
}

func TestRootElement(t *testing.T) {
	cases := []struct {
		name     string
		vars     map[string]any
		expected string
	}{
		{
			name: "prefix and xmlns attribute",
			vars: map[string]any{
				"root_namespace_prefix":      "cal",
				"root_xmlns_attribute_name":  "xmlns:cal",
				"root_xmlns_attribute_value": "http://donkey/ws.asmx/",
			},
			expected: `<cal:AddLead xmlns:cal="http://donkey/ws.asmx/"></cal:AddLead>`,
		},
		{
			name:     "prefix only",
			vars:     map[string]any{"root_namespace_prefix": "cal"},
			expected: `<cal:AddLead xmlns="http://donkey/ws.asmx/"></cal:AddLead>`,
		},
		{
			name: "xmlns attribute only",
			vars: map[string]any{
				"root_xmlns_attribute_name":  "xmlns:cal",
				"root_xmlns_attribute_value": "http://donkey/ws.asmx/",
			},
			expected: `<AddLead xmlns:cal="http://donkey/ws.asmx/"></AddLead>`,
		},
		{
			name:     "default",
			expected: `<AddLead xmlns="http://donkey/ws.asmx/"></AddLead>`,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			svc := newFakeService(t, "testdata/success.xml")
			vars := svc.vars("AddLead")
			for k, v := range test.vars {
				vars[k] = v
			}
			handle(t, vars)
			require.Contains(t, svc.lastCall(t).body, test.expected)
		})
	}
}

func TestResponse(t *testing.T) {
	cases := []struct {
		name     string
		vars     map[string]any
		expected map[string]any
	}{
		{name: "default success", expected: map[string]any{"outcome": "success"}},
		{name: "default failure per outcome on match", vars: map[string]any{"outcome_on_match": "failure"}, expected: map[string]any{"outcome": "failure"}},
		{name: "exact match", vars: map[string]any{"outcome_search_term": "some message"}, expected: map[string]any{"outcome": "success"}},
		{name: "exact match at path", vars: map[string]any{"outcome_search_path": "AddLeadResult.Message", "outcome_search_term": "some message"}, expected: map[string]any{"outcome": "success"}},
		{name: "no match", vars: map[string]any{"outcome_search_term": "bar"}, expected: map[string]any{"outcome": "failure"}},
		{name: "no match at path", vars: map[string]any{"outcome_search_path": "AddLeadResult.Message", "outcome_search_term": "foo"}, expected: map[string]any{"outcome": "failure"}},
		{name: "bogus path", vars: map[string]any{"outcome_search_path": "0", "outcome_search_term": "foo"}, expected: map[string]any{"outcome": "failure"}},
		{name: "different path", vars: map[string]any{"outcome_search_path": "AddLeadResult.Result", "outcome_search_term": "some message"}, expected: map[string]any{"outcome": "failure"}},
		{name: "failure on match", vars: map[string]any{"outcome_search_term": "some message", "outcome_on_match": "failure"}, expected: map[string]any{"outcome": "failure"}},
		{name: "partial match", vars: map[string]any{"outcome_search_term": "some"}, expected: map[string]any{"outcome": "success"}},
		{name: "regex", vars: map[string]any{"outcome_search_term": `[a-z]{4}\s[a-z]{7}`}, expected: map[string]any{"outcome": "success"}},
		{name: "regex with slashes at path", vars: map[string]any{"outcome_search_path": "AddLeadResult.Message", "outcome_search_term": `/[a-z]{4}\s[a-z]{7}/`}, expected: map[string]any{"outcome": "success"}},
		{name: "invalid regex", vars: map[string]any{"outcome_search_term": "/[/"}, expected: map[string]any{"outcome": "failure"}},
		{name: "upper case term", vars: map[string]any{"outcome_search_term": "SOME MESSAGE"}, expected: map[string]any{"outcome": "success"}},
		{name: "reason", vars: map[string]any{"outcome_search_term": "false", "reason_path": "AddLeadResult.Message"}, expected: map[string]any{"outcome": "failure", "reason": "some message"}},
		{name: "empty reason", vars: map[string]any{"outcome_search_term": "false", "reason_path": "AddLeadResult.Empty"}, expected: map[string]any{"outcome": "failure"}},
		{name: "multiple reasons", vars: map[string]any{"outcome_search_term": "false", "reason_path": "AddLeadResult.Multi.Foo"}, expected: map[string]any{"outcome": "failure", "reason": "1, 2"}},
		{name: "default reason", vars: map[string]any{"outcome_search_term": "false", "default_reason": "just because"}, expected: map[string]any{"outcome": "failure", "reason": "just because"}},
		{name: "missing reason", vars: map[string]any{"outcome_search_term": "false", "reason_path": "AddLeadResult.Bogus"}, expected: map[string]any{"outcome": "failure"}},
		{name: "default reason for missing reason", vars: map[string]any{"outcome_search_term": "false", "reason_path": "AddLeadResult.Bogus", "default_reason": "just because"}, expected: map[string]any{"outcome": "failure", "reason": "just because"}},
		{name: "price", vars: map[string]any{"price_path": "AddLeadResult.Cost"}, expected: map[string]any{"outcome": "success", "price": 1.5}},
		{name: "price dropped on failure", vars: map[string]any{"price_path": "AddLeadResult.Cost", "outcome_on_match": "failure"}, expected: map[string]any{"outcome": "failure"}},
		{name: "reference", vars: map[string]any{"reference_path": "AddLeadResult.LeadId"}, expected: map[string]any{"outcome": "success", "reference": "12345"}},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			svc := newFakeService(t, "testdata/success.xml")
			vars := svc.vars("AddLead")
			for k, v := range test.vars {
				vars[k] = v
			}
			event := handle(t, vars)

			expected := map[string]any{
				"price": float64(0),
				"AddLeadResult": map[string]any{
					"Result":  "true",
					"Message": "some message",
					"LeadId":  "12345",
					"Empty":   "",
					"Cost":    "1.5",
					"Multi":   map[string]any{"Foo": []any{"1", "2"}},
				},
			}
			for k, v := range test.expected {
				expected[k] = v
			}
			require.Empty(t, cmp.Diff(expected, map[string]any(event)))
		})
	}
}

func TestEncodedResponse(t *testing.T) {
	svc := newFakeService(t, "testdata/encoded.xml")
	event := handle(t, svc.vars("AddLeadXML"))

	expected := map[string]any{
		"Response": map[string]any{
			"Result":  "true",
			"Message": "some message",
			"LeadId":  "12345",
			"Empty":   "",
			"Multi":   map[string]any{"Foo": []any{"1", "2"}},
		},
	}
	require.Empty(t, cmp.Diff(expected, event["AddLeadXMLResult"]))
	require.Equal(t, "success", event["outcome"])
}

func TestFault(t *testing.T) {
	cases := []struct {
		name     string
		file     string
		version  string
		expected map[string]any
	}{
		{
			name:     "soap 1.1",
			file:     "testdata/fault.xml",
			expected: map[string]any{"outcome": "error", "reason": "Server was unable to process request."},
		},
		{
			name:     "soap 1.2",
			file:     "testdata/fault12.xml",
			version:  "1.2",
			expected: map[string]any{"outcome": "error", "reason": "Invalid lead"},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			svc := newFakeService(t, test.file)
			svc.respond(http.StatusInternalServerError, nil, 0)
			vars := svc.vars("AddLead")
			if test.version != "" {
				vars["version"] = test.version
			}
			event := handle(t, vars)
			require.Empty(t, cmp.Diff(test.expected, map[string]any(event)))
		})
	}
}

func TestServerErrorWithoutFault(t *testing.T) {
	svc := newFakeService(t, "testdata/success.xml")
	svc.respond(http.StatusBadGateway, []byte("bad gateway"), 0)

	client := NewClient(nil)
	defer client.Close()
	event, err := client.Handle(context.Background(), svc.vars("AddLead"))
	require.NotNil(t, err)
	require.Nil(t, event)
}

func TestTimeout(t *testing.T) {
	svc := newFakeService(t, "testdata/success.xml")
	svc.respond(http.StatusOK, nil, 5*time.Second)

	vars := svc.vars("AddLead")
	vars["timeout_seconds"] = 0.2

	client := NewClient(nil)
	defer client.Close()
	event, err := client.Handle(context.Background(), vars)
	require.ErrorIs(t, err, ErrTimeout)
	require.Nil(t, event)
}

func TestNotTimeout(t *testing.T) {
	svc := newFakeService(t, "testdata/success.xml")
	svc.respond(http.StatusOK, nil, 100*time.Millisecond)

	vars := svc.vars("AddLead")
	vars["timeout_seconds"] = "2"
	event := handle(t, vars)
	require.Equal(t, "success", event["outcome"])
}

func TestInvoke(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)

	svc := newFakeService(t, "testdata/success.xml")
	defer svc.server.Close()

	client := NewClient(nil)
	defer client.Close()

	results := client.Invoke(context.Background(), svc.vars("AddLead"))
	result, ok := <-results
	require.True(t, ok)
	require.Nil(t, result.Err)
	require.Equal(t, "success", result.Event["outcome"])

	_, ok = <-results
	require.False(t, ok)

	results = client.Invoke(context.Background(), svc.vars("nope"))
	result = <-results
	require.ErrorIs(t, result.Err, ErrUnsupportedFunction)
	require.Nil(t, result.Event)
}

func TestParseWSDL(t *testing.T) {
	wsdl, err := os.ReadFile("testdata/service.wsdl")
	require.Nil(t, err)

	svc, err := ParseWSDL(wsdl)
	require.Nil(t, err)
	require.Equal(t, "http://donkey/ws.asmx/", svc.TargetNamespace)
	require.Equal(t, map[Version]string{
		Version11: "{{endpoint}}/login/ws/ws.asmx",
		Version12: "{{endpoint}}/login/ws/ws12.asmx",
	}, svc.Endpoints)

	addLead := svc.Operations["AddLead"]
	require.NotNil(t, addLead)
	require.Equal(t, "AddLead", addLead.Element)
	require.Equal(t, []Field{{Name: "Lead", Type: "Lead"}}, addLead.Fields)
	require.Equal(t, map[Version]string{
		Version11: "http://donkey/ws.asmx/AddLead",
		Version12: "http://donkey/ws.asmx/AddLead12",
	}, addLead.Actions)

	require.Equal(t, []Field{
		{Name: "ZipCode", Type: "string"},
		{Name: "FirstName", Type: "string"},
		{Name: "bar", Type: "string"},
	}, svc.Types["Lead"])

	require.Equal(t, []Field{{Name: "LeadXML", Type: "string"}}, svc.Operations["AddLeadXML"].Fields)

	_, err = ParseWSDL([]byte("<nope/>"))
	require.NotNil(t, err)
}
