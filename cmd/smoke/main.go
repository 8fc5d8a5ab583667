// End-to-end smoke test against a running server. Seeds a small demo firm in
// the relationship graph through the driver, then drives the HTTP surface.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/counselops/clearance/internal/driver"
)

const (
	baseURL = "http://localhost:8080"
	firmID  = "smoke-firm"
)

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	uri := os.Getenv("GRAPH_URI")
	if uri == "" {
		uri = "bolt://localhost:7687"
	}

	ctx := context.Background()
	d, err := driver.NewNeo4jDriver(uri, os.Getenv("GRAPH_USER"), os.Getenv("GRAPH_PASSWORD"), logger)
	if err != nil {
		fmt.Printf("Error connecting to graph: %v\n", err)
		os.Exit(1)
	}
	defer d.Close(ctx)

	fmt.Println("Seeding demo graph...")
	if err := seed(ctx, d); err != nil {
		fmt.Printf("FAILED: seed graph: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("PASSED: seed graph")

	// 1. Conflict check on the opposing party; expects a direct adversary hit.
	fmt.Println("1. Checking opposing party...")
	ok, body := sendRequest("POST", "/check", map[string]interface{}{
		"subject_id":   "smoke-opponent",
		"subject_kind": "company",
	})
	if !ok {
		fmt.Println("FAILED: conflict check")
		os.Exit(1)
	}
	fmt.Println("PASSED: conflict check")

	// 2. Resolve the first persisted conflict as a false positive.
	recordID := firstRecordID(body)
	if recordID == "" {
		fmt.Println("SKIPPED: resolve (no persisted record in response)")
	} else {
		fmt.Println("2. Resolving conflict", recordID, "...")
		ok, _ = sendRequest("POST", "/conflicts/"+recordID+"/resolve", map[string]string{
			"resolution": "false_positive",
		})
		if !ok {
			fmt.Println("FAILED: resolve conflict")
			os.Exit(1)
		}
		fmt.Println("PASSED: resolve conflict")
	}

	// 3. Digest for the smoke user.
	fmt.Println("3. Requesting digest...")
	ok, _ = sendRequest("POST", "/digest", nil)
	if !ok {
		fmt.Println("FAILED: digest")
		os.Exit(1)
	}
	fmt.Println("PASSED: digest")
}

func seed(ctx context.Context, d *driver.Neo4jDriver) error {
	queries := []string{
		`MATCH (n {firm_id: $firm_id}) DETACH DELETE n`,
		`CREATE (cl:Party {id: 'smoke-client', name: 'Smoke Client BV', kind: 'company', firm_id: $firm_id})
		 CREATE (op:Party {id: 'smoke-opponent', name: 'Smoke Opponent NV', kind: 'company', firm_id: $firm_id})
		 CREATE (k:Case {id: 'smoke-case', name: 'Client v Opponent', status: 'active', firm_id: $firm_id})
		 CREATE (k)-[:CLIENT]->(cl)
		 CREATE (k)-[:OPPONENT]->(op)`,
	}
	for _, q := range queries {
		if _, err := d.ExecuteQuery(ctx, q, map[string]interface{}{"firm_id": firmID}); err != nil {
			return err
		}
	}
	return nil
}

// firstRecordID pulls the record id of the first persisted conflict out of a
// check response, if the server persisted any.
func firstRecordID(body []byte) string {
	var resp struct {
		RecordIDs []string `json:"record_ids"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.RecordIDs) == 0 {
		return ""
	}
	return resp.RecordIDs[0]
}

func sendRequest(method, endpoint string, payload interface{}) (bool, []byte) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false, nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Firm-ID", firmID)
	req.Header.Set("X-User-ID", "smoke-user")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false, nil
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false, respBody
	}
	fmt.Printf("Response: %s\n", string(respBody))

	return true, respBody
}