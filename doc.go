// Package urilaga provides the core of a small image-gallery backend: user
// login against a stored credential table, image upload with metadata to an
// object store, and a paginated, filterable listing of the uploaded images.
//
// The package holds no state between requests. Persistence is delegated to a
// metadata Repo (PostgreSQL or SQLite) and blob storage to an ObjectStore
// (local filesystem or an S3-compatible bucket).
//
// # Key Components
//
//   - GalleryService: Login, Upload, List and maintenance operations
//   - Repo: users and images metadata persistence
//   - ObjectStore: blob writes and signed read URLs
//   - Presigner / SignatureVerifier: native presigned URLs for the filesystem backend
//
// # Example Usage
//
//	service, err := urilaga.NewGalleryService(repo, objects, urilaga.ServiceConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Check credentials
//	err = service.Login(ctx, "alba", "secret")
//
//	// Upload an image with metadata
//	res, err := service.Upload(ctx, urilaga.UploadRequest{
//	    Judul: "Sunset", Rating: "5", Tanggal: "2024-01-01", By: "Alba",
//	    File:  &urilaga.UploadFile{Name: "sunset.jpg", ContentType: "image/jpeg", Content: r},
//	})
//
//	// Page through images
//	page, err := service.List(ctx, urilaga.ImageQuery{Page: 1, Limit: 6, Search: "sun"})
//
// See the http package for the REST API and the database packages for the
// metadata backends.
package urilaga
