// Package ioutils provides the file system and image utilities behind a run.
//
// This package contains:
//   - Destination directory creation (EnsureDir) and its fatal SetupError
//   - Destination path resolution and presence checks (Resolver)
//   - Atomic file writes that never leave a partial file at the target path
//   - Optional image conversion and downscaling (ImageService)
//
// # Destination Handling
//
//	if err := ioutils.EnsureDir("public/memes"); err != nil {
//	    return err // *SetupError, fatal
//	}
//	r := ioutils.NewResolver("public/memes")
//	if !r.Exists("drake_no.jpg") {
//	    err := ioutils.WriteFileAtomic(r.Resolve("drake_no.jpg"), data)
//	}
//
// # Image Processing
//
// The ImageService re-encodes fetched images so their content matches the
// file extension they are saved under:
//
//	svc := ioutils.NewImageService()
//
//	// A PNG served for "pepe_crying.jpg" becomes a JPEG
//	out, changed, err := svc.Normalize(ctx, "pepe_crying.jpg", data, 0)
package ioutils
