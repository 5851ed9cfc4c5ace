package ecigate_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/yndnr/ecigate-go/pkg/ecigate"
)

func Example() {
	ctx := context.Background()

	client, err := ecigate.Init(ctx, ecigate.Config{
		Host:           "gateway.example.com",
		Port:           2006,
		ServerName:     "CICSA",
		ConnectTimeout: 30,
		Credentials:    ecigate.Credentials{UserID: "CICSUSER", Password: "secret"},
		TLS: &ecigate.TLSConfig{
			Keyring:         "/etc/ecigate/client.p12",
			KeyringPassword: "changeit",
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	resp, err := client.Execute(ctx, ecigate.RequestSpec{
		ProgramName:  "PROG1",
		CommArea:     []byte("input"),
		CommAreaSize: ecigate.IntPtr(100),
		Timeout:      30,
	})
	var ecErr *ecigate.Error
	switch {
	case errors.As(err, &ecErr) && errors.Is(err, ecigate.ErrRemoteRejected):
		fmt.Println("rejected:", ecigate.ReturnCodeName(ecErr.Code))
	case err != nil:
		log.Fatal(err)
	default:
		fmt.Printf("%d bytes\n", len(resp.Payload))
	}
}
