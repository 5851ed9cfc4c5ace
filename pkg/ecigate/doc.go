// Package ecigate is a client for running CICS programs through an ECI
// gateway.
//
// Init opens a connection for one CICS server and credential set:
//
//	client, err := ecigate.Init(ctx, ecigate.Config{
//		Host:           "gateway.example.com",
//		Port:           2006,
//		ServerName:     "CICSA",
//		ConnectTimeout: 30,
//		Credentials:    ecigate.Credentials{UserID: "CICSUSER", Password: "secret"},
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	resp, err := client.Execute(ctx, ecigate.RequestSpec{
//		ProgramName: "PROG1",
//		CommArea:    []byte("input"),
//	})
//
// Setting Config.TLS switches the connection to TLS, with trust material
// and an optional client certificate read from a PKCS#12 file, a PEM
// bundle or a directory of PEM files.
//
// Requests run on a worker pool. Clients share one with WithPool; a client
// created without it owns a private pool.
package ecigate
