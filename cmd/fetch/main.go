// Command fetch runs one pairing round from the terminal: it prints the
// join QR code, waits for the phone to submit, and has the server
// deliver the content to its target.
package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/quickfetch/quickfetch/internal/netutil"
	"github.com/quickfetch/quickfetch/internal/poller"
	"github.com/quickfetch/quickfetch/internal/session"
)

func main() {
	server := flag.String("server", "https://127.0.0.1:6999", "base URL of the local quickfetch server")
	target := flag.String("target", "CLIPBOARD", "target field id, or CLIPBOARD")
	address := flag.String("address", "", "local address to advertise in the QR code (default: first usable interface)")
	flag.Parse()

	if err := run(*server, *target, *address); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(server, target, address string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The server presents a self-signed certificate for LAN use, so
	// verification against the system roots cannot succeed.
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}

	if address == "" {
		address = netutil.Interfaces()[0].IP
	}

	payload, err := generateQR(ctx, client, server, target, address)
	if err != nil {
		return err
	}

	code, err := qrcode.New(payload.URL, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("render qr code: %w", err)
	}
	fmt.Println(code.ToSmallString(false))
	fmt.Println("Scan the code or open:", payload.URL)
	fmt.Println("Waiting for submission (Ctrl-C to cancel)...")

	p := poller.New(poller.Config{BaseURL: server, Client: client}, func(session.Status) {})
	if err := p.Run(ctx); err != nil {
		return err
	}

	delivery, err := deliver(client, server)
	if err != nil {
		return err
	}

	if delivery.TargetFieldID == "CLIPBOARD" {
		fmt.Println("Received. Content copied to the clipboard.")
	} else {
		fmt.Printf("Received. Content saved to field %q.\n", delivery.TargetFieldID)
	}
	return nil
}

type qrPayload struct {
	URL string `json:"url"`
}

func generateQR(ctx context.Context, client *http.Client, server, target, address string) (*qrPayload, error) {
	body, err := json.Marshal(map[string]string{
		"targetId": target,
		"address":  address,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, server+"/api/qr", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request qr code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request qr code: unexpected status %d", resp.StatusCode)
	}

	var payload qrPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode qr response: %w", err)
	}
	return &payload, nil
}

type deliveryResult struct {
	TargetFieldID string `json:"targetFieldId"`
}

func deliver(client *http.Client, server string) (*deliveryResult, error) {
	resp, err := client.Post(server+"/api/session/deliver", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("deliver content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deliver content: unexpected status %d", resp.StatusCode)
	}

	var result deliveryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode delivery response: %w", err)
	}
	return &result, nil
}
