// Package config holds the ecigate-cli configuration.
//
// The file lives at ~/.ecigate/cli.yaml and mirrors the connection keys
// of the library:
//
//	gateway:
//	  host: gateway.example.com
//	  port: 2006
//	  cics_server: CICSA
//	  socket_connect_timeout: 30
//	  auth:
//	    user_id: CICSUSER
//	    password: secret
//	  secure_socket:
//	    ssl_keyring: /etc/ecigate/client.p12
//	    ssl_keyring_password: changeit
//	    ssl_cipher_suites: [TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384]
//	output: table
//
// Values resolve as flag > ECIGATE_* environment > file > default.
package config
