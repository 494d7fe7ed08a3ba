// Package clientcli is a client library for a urilaga gallery server.
//
// It wraps the JSON API: login checks, multipart uploads, paginated image
// listings and downloads of the signed URLs those listings return.
// Connection settings are kept as named profiles in a YAML file.
//
// # Basic Usage
//
//	client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:3000"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath: "./sunset.png",
//		Judul:     "Sunset",
//		Rating:    "5",
//		Tanggal:   "2024-01-01",
//		By:        "Alba",
//	})
//
// # Profile Configuration
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
//
// # Errors
//
// Non-200 responses surface as *APIError. Compare with errors.Is against
// ErrUserNotFound, ErrInvalidCredential, ErrTooLarge and the other sentinels.
package clientcli
