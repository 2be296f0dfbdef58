package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shaiso/ymlfeed/internal/domain"
)

func TestParseFeedFile(t *testing.T) {
	src := `
name: repair-services
params:
  catid: [3, 5]
  show_child_category_articles: true
  levels: 2
  city: Москва
  year_com: 2010
`
	ff, err := parseFeedFile(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parseFeedFile: %v", err)
	}

	want := domain.DefaultFeedParams()
	want.CatIDs = []int64{3, 5}
	want.ShowChildCategoryArticles = true
	want.Levels = 2
	want.City = "Москва"
	want.YearCom = 2010

	if ff.Name != "repair-services" {
		t.Errorf("name = %q", ff.Name)
	}
	if diff := cmp.Diff(want, ff.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFeedFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", ``, "empty"},
		{"no name", "params:\n  catid: [3]\n", "name is required"},
		{"unknown field", "name: x\nparams:\n  catids: [3]\n", "catids"},
		{"no categories", "name: x\nparams:\n  count: 10\n", domain.ErrNoCategories.Error()},
		{"bad mode", "name: x\nparams:\n  catid: [3]\n  ex_or_include_articles: 3\n", domain.ErrInvalidFilterArg.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFeedFile(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

// apiStub отвечает фиксированными телами по "METHOD path".
type apiStub struct {
	responses map[string]stubResponse
	requests  []string
	bodies    map[string]string
}

type stubResponse struct {
	status  int
	body    string
	headers map[string]string
}

func newAPIStub(t *testing.T, responses map[string]stubResponse) (*apiStub, *Client) {
	t.Helper()
	stub := &apiStub{responses: responses, bodies: make(map[string]string)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		stub.requests = append(stub.requests, r.Method+" "+r.URL.RequestURI())
		body, _ := io.ReadAll(r.Body)
		stub.bodies[key] = string(body)

		resp, ok := stub.responses[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"code":"NOT_FOUND","message":"no route"}}`)
			return
		}
		for k, v := range resp.headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.status)
		io.WriteString(w, resp.body)
	}))
	t.Cleanup(srv.Close)
	return stub, NewClient(srv.URL + "/")
}

func TestClient_ListFeeds(t *testing.T) {
	_, client := newAPIStub(t, map[string]stubResponse{
		"GET /api/v1/feeds": {status: 200, body: `{"data":[{"id":"f1","name":"repair","params":{"catid":[3],"currency":"RUR"}}],"total":1}`},
	})

	feeds, err := client.ListFeeds()
	if err != nil {
		t.Fatalf("ListFeeds: %v", err)
	}
	if len(feeds) != 1 || feeds[0].Name != "repair" {
		t.Fatalf("feeds = %+v", feeds)
	}
	if diff := cmp.Diff([]int64{3}, feeds[0].Params.CatIDs); diff != "" {
		t.Errorf("catid mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_APIError(t *testing.T) {
	_, client := newAPIStub(t, map[string]stubResponse{
		"POST /api/v1/feeds": {status: 409, body: `{"error":{"code":"CONFLICT","message":"feed with this name already exists"}}`},
	})

	_, err := client.CreateFeed(CreateFeedRequest{Name: "repair"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Code != "CONFLICT" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestClient_PreviewFeed(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?><yml_catalog date="x"></yml_catalog>`
	_, client := newAPIStub(t, map[string]stubResponse{
		"GET /api/v1/feeds/f1/preview": {
			status:  200,
			body:    xml,
			headers: map[string]string{"Content-Type": "application/xml", "X-Offers-Count": "7"},
		},
	})

	preview, err := client.PreviewFeed("f1")
	if err != nil {
		t.Fatalf("PreviewFeed: %v", err)
	}
	if string(preview.Body) != xml || preview.OffersCount != 7 {
		t.Errorf("preview = %q / %d", preview.Body, preview.OffersCount)
	}
}

func TestClient_ListRunsQuery(t *testing.T) {
	stub, client := newAPIStub(t, map[string]stubResponse{
		"GET /api/v1/runs": {status: 200, body: `{"data":[]}`},
	})

	if _, err := client.ListRuns(ListRunsOpts{FeedID: "f1", Status: "FAILED", Limit: 5}); err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	want := []string{"GET /api/v1/runs?feed_id=f1&limit=5&status=FAILED"}
	if diff := cmp.Diff(want, stub.requests); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}

func testOutput(jsonMode bool) (*Output, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Output{jsonMode: jsonMode, w: &stdout, errW: &stderr}, &stdout, &stderr
}

func TestFeedListCmd_Table(t *testing.T) {
	_, client := newAPIStub(t, map[string]stubResponse{
		"GET /api/v1/feeds": {status: 200, body: `{"data":[{"id":"f1","name":"repair","params":{"catid":[3,5],"count":100,"currency":"RUR"}}]}`},
	})
	out, stdout, _ := testOutput(false)

	cmd := NewFeedCmd(func() *Client { return client }, func() *Output { return out })
	cmd.SetArgs([]string{"list"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	got := stdout.String()
	for _, want := range []string{"NAME", "repair", "3,5", "100", "RUR"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestFeedRunCmd_SendsIdempotencyKey(t *testing.T) {
	stub, client := newAPIStub(t, map[string]stubResponse{
		"POST /api/v1/feeds/f1/runs": {status: 201, body: `{"data":{"id":"r1","feed_id":"f1","status":"PENDING","trigger":"manual"}}`},
	})
	out, stdout, stderr := testOutput(true)

	cmd := NewFeedCmd(func() *Client { return client }, func() *Output { return out })
	cmd.SetArgs([]string{"run", "f1", "--idempotency-key", "deploy-42"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var sent CreateRunRequest
	if err := json.Unmarshal([]byte(stub.bodies["POST /api/v1/feeds/f1/runs"]), &sent); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if sent.IdempotencyKey != "deploy-42" {
		t.Errorf("idempotency_key = %q", sent.IdempotencyKey)
	}
	if !strings.Contains(stderr.String(), "Run started: r1") {
		t.Errorf("stderr = %q", stderr.String())
	}

	var run RunResponse
	if err := json.Unmarshal(stdout.Bytes(), &run); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if run.Status != "PENDING" {
		t.Errorf("status = %q", run.Status)
	}
}

func TestScheduleEnableCmd(t *testing.T) {
	stub, client := newAPIStub(t, map[string]stubResponse{
		"PUT /api/v1/schedules/s1/enabled": {status: 200, body: `{"data":{"id":"s1","enabled":false}}`},
	})
	out, _, _ := testOutput(false)

	cmd := NewScheduleCmd(func() *Client { return client }, func() *Output { return out })
	cmd.SetArgs([]string{"disable", "s1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if got := stub.bodies["PUT /api/v1/schedules/s1/enabled"]; !strings.Contains(got, `"enabled":false`) {
		t.Errorf("request body = %q", got)
	}
}

func TestScheduleListCmd_FeedNames(t *testing.T) {
	_, client := newAPIStub(t, map[string]stubResponse{
		"GET /api/v1/schedules": {status: 200, body: `{"data":[
			{"id":"s1","feed_id":"f1","name":"nightly","cron_expr":"0 3 * * *","timezone":"Europe/Moscow","enabled":true},
			{"id":"s2","feed_id":"f9","name":"often","interval_sec":21600,"timezone":"UTC","enabled":false}]}`},
		"GET /api/v1/feeds": {status: 200, body: `{"data":[{"id":"f1","name":"repair"}]}`},
	})
	out, stdout, _ := testOutput(false)

	cmd := NewScheduleCmd(func() *Client { return client }, func() *Output { return out })
	cmd.SetArgs([]string{"list"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	got := stdout.String()
	// f9 не найден среди фидов — показывается ID
	for _, want := range []string{"repair", "0 3 * * *", "every 6h0m0s", "f9", "Europe/Moscow"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestScheduleShowCmd_LastRun(t *testing.T) {
	_, client := newAPIStub(t, map[string]stubResponse{
		"GET /api/v1/schedules/s1": {status: 200, body: `{"data":{"id":"s1","feed_id":"f1","name":"nightly","cron_expr":"@daily","timezone":"UTC","enabled":true,"last_run_id":"r7"}}`},
		"GET /api/v1/feeds/f1":     {status: 200, body: `{"data":{"id":"f1","name":"repair"}}`},
		"GET /api/v1/runs/r7":      {status: 200, body: `{"data":{"id":"r7","feed_id":"f1","status":"SUCCEEDED","offers_count":42,"location":"/var/www/yandex/repair.feed.xml"}}`},
	})
	out, stdout, _ := testOutput(true)

	cmd := NewScheduleCmd(func() *Client { return client }, func() *Output { return out })
	cmd.SetArgs([]string{"show", "s1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var details ScheduleDetails
	if err := json.Unmarshal(stdout.Bytes(), &details); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if details.ID != "s1" || details.FeedName != "repair" {
		t.Errorf("details = %+v", details)
	}
	if details.LastRun == nil || details.LastRun.OffersCount != 42 {
		t.Errorf("last run = %+v", details.LastRun)
	}
}

func TestScheduleCreateCmd_Trigger(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
		wantSec int
	}{
		{name: "interval as duration", args: []string{"--interval", "6h"}, wantSec: 21600},
		{name: "no trigger", args: nil, wantErr: "exactly one of --cron or --interval"},
		{name: "both triggers", args: []string{"--cron", "@daily", "--interval", "1h"}, wantErr: "exactly one of --cron or --interval"},
		{name: "fractional seconds", args: []string{"--interval", "1500ms"}, wantErr: "whole number of seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub, client := newAPIStub(t, map[string]stubResponse{
				"POST /api/v1/feeds/f1/schedules": {status: 201, body: `{"data":{"id":"s1","feed_id":"f1","name":"often","interval_sec":21600,"enabled":true}}`},
			})
			out, _, _ := testOutput(false)

			cmd := NewScheduleCmd(func() *Client { return client }, func() *Output { return out })
			cmd.SetArgs(append([]string{"create", "f1", "--name", "often"}, tt.args...))
			cmd.SilenceUsage = true
			err := cmd.Execute()

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want %q", err, tt.wantErr)
				}
				if len(stub.requests) != 0 {
					t.Errorf("no request expected, got %v", stub.requests)
				}
				return
			}
			if err != nil {
				t.Fatalf("execute: %v", err)
			}

			var sent CreateScheduleRequest
			if err := json.Unmarshal([]byte(stub.bodies["POST /api/v1/feeds/f1/schedules"]), &sent); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if sent.IntervalSec != tt.wantSec || !sent.Enabled {
				t.Errorf("request = %+v", sent)
			}
		})
	}
}

func TestRunWaitCmd(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		wantMsg string
	}{
		{
			name:    "succeeded",
			body:    `{"data":{"id":"r1","feed_id":"f1","status":"SUCCEEDED","offers_count":3,"location":"/var/www/yandex/repair.feed.xml"}}`,
			wantMsg: "Feed written to /var/www/yandex/repair.feed.xml (3 offers)",
		},
		{
			name:    "failed",
			body:    `{"data":{"id":"r1","feed_id":"f1","status":"FAILED","error":"feed has no categories"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newAPIStub(t, map[string]stubResponse{
				"GET /api/v1/runs/r1": {status: 200, body: tt.body},
			})
			out, _, stderr := testOutput(false)

			cmd := NewRunCmd(func() *Client { return client }, func() *Output { return out })
			cmd.SetArgs([]string{"wait", "r1", "--interval", "10ms", "--timeout", "1s"})
			cmd.SilenceUsage = true
			err := cmd.Execute()

			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(stderr.String(), tt.wantMsg) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantMsg)
			}
		})
	}
}

func TestWaitRun_Timeout(t *testing.T) {
	_, client := newAPIStub(t, map[string]stubResponse{
		"GET /api/v1/runs/r1": {status: 200, body: `{"data":{"id":"r1","feed_id":"f1","status":"RUNNING"}}`},
	})

	_, err := waitRun(client, "r1", 5*time.Millisecond, 20*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "still RUNNING") {
		t.Errorf("error = %v, want timeout", err)
	}
}
