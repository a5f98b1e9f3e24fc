package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Pretty print JSON helper
func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{} // No timeout, streaming endpoint may be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	token := os.Getenv("API_TOKEN")
	if token == "" {
		color.Red("API_TOKEN is not set. Log in first and export the access token.")
		os.Exit(1)
	}

	color.Cyan("🚀 Starting Chat & Board API Test\n")

	// 1. Create a chat session
	color.Yellow("\n[CHAT] 1. Create Session")
	resp, body, err := sendRequest("POST", "/chat/v1/session", token, map[string]interface{}{
		"title": "Smoke Test Session",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var sessionResp struct {
		Data struct {
			Id string `json:"id"`
		} `json:"data"`
	}
	json.Unmarshal(body, &sessionResp)
	prettyPrint(sessionResp)

	sessionId := sessionResp.Data.Id
	if sessionId == "" {
		color.Red("No session id in response, aborting")
		os.Exit(1)
	}

	// 2. Stream a chat turn
	color.Yellow("\n[CHAT] 2. Stream Prompt")
	streamBody, _ := json.Marshal(map[string]interface{}{
		"prompt": "Say hello in exactly five words.",
	})
	streamReq, _ := http.NewRequest("POST", baseURL+"/chat/v1/session/"+sessionId+"/stream", bytes.NewBuffer(streamBody))
	streamReq.Header.Set("Content-Type", "application/json")
	streamReq.Header.Set("Authorization", "Bearer "+token)

	streamResp, err := (&http.Client{}).Do(streamReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", streamResp.Status)

	scanner := bufio.NewScanner(streamResp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			fmt.Println(line)
		}
	}
	streamResp.Body.Close()

	// 3. List the session's messages
	color.Yellow("\n[CHAT] 3. Get Messages")
	resp, body, err = sendRequest("GET", "/chat/v1/session/"+sessionId+"/messages", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var messagesResp map[string]interface{}
	json.Unmarshal(body, &messagesResp)
	prettyPrint(messagesResp)

	// 4. Add a sticky bound to the session
	color.Yellow("\n[BOARD] 4. Add Sticky")
	resp, body, err = sendRequest("POST", "/board/v1/sticky", token, map[string]interface{}{
		"content":    "remember to test the board",
		"x":          100,
		"y":          120,
		"color":      "yellow",
		"session_id": sessionId,
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var stickyResp map[string]interface{}
	json.Unmarshal(body, &stickyResp)
	prettyPrint(stickyResp)

	// 5. Read the board back
	color.Yellow("\n[BOARD] 5. Get Board")
	resp, body, err = sendRequest("GET", "/board/v1/stickies", token, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var boardResp map[string]interface{}
	json.Unmarshal(body, &boardResp)
	prettyPrint(boardResp)

	color.Cyan("\n✅ Smoke test finished")
}
