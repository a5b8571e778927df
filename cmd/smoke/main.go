package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := os.Getenv("SMOKE_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting smoke test...")

	name := fmt.Sprintf("Smoke %d", time.Now().Unix())
	img := testImage()

	fmt.Println("1. Registering face...")
	var reg struct {
		ID      string `json:"id"`
		Warning string `json:"warning"`
	}
	if !sendRequest(baseURL, "POST", "/register-face", map[string]any{
		"name":     name,
		"image":    img,
		"metadata": map[string]any{"source": "smoke"},
	}, &reg) {
		fail("Register face")
	}
	if reg.Warning != "" {
		fmt.Printf("WARNING: %s\n", reg.Warning)
	}
	fmt.Println("PASSED: Register face")

	fmt.Println("2. Recognizing face...")
	var rec struct {
		Faces []struct {
			Name string `json:"name"`
		} `json:"faces"`
	}
	if !sendRequest(baseURL, "POST", "/recognize-faces", map[string]any{"image": img}, &rec) {
		fail("Recognize face")
	}
	if len(rec.Faces) != 1 || rec.Faces[0].Name != name {
		fail(fmt.Sprintf("Recognize face: got %+v", rec.Faces))
	}
	fmt.Println("PASSED: Recognize face")

	fmt.Println("3. Asking a question...")
	if !sendRequest(baseURL, "POST", "/answer-question", map[string]any{"question": "Who is registered?"}, nil) {
		fail("Answer question")
	}
	fmt.Println("PASSED: Answer question")

	fmt.Println("4. Deleting face...")
	if !sendRequest(baseURL, "DELETE", "/delete-face/"+reg.ID, nil, nil) {
		fail("Delete face")
	}
	fmt.Println("PASSED: Delete face")
}

func fail(step string) {
	fmt.Printf("FAILED: %s\n", step)
	os.Exit(1)
}

// testImage renders a small gradient the server accepts as one face.
func testImage() string {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	seed := uint8(time.Now().UnixNano())
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: seed, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func sendRequest(baseURL, method, endpoint string, payload, out any) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}
	fmt.Printf("Response: %s\n", string(respBody))

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			fmt.Printf("Error decoding response: %v\n", err)
			return false
		}
	}
	return true
}
