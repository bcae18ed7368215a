// Package minio implements objectstore.Store for MinIO and other S3-compatible
// servers using github.com/minio/minio-go/v7.
//
// # Creating a client
//
//	client, err := minio.NewClient(minio.Config{
//		Store: objectstore.StoreConfig{
//			EndpointURL:   "http://localhost:9000",
//			AccessKey:     "minioadmin",
//			SecretKey:     "minioadmin",
//			DefaultBucket: "uploads",
//		},
//	}, log, nil)
//
// NewClient validates the configuration and fails with
// objectstore.ErrInvalidConfig when a required field is missing. It does not
// contact the server; Ping does, and runs from the fx start hook when
// ValidateOnStart is set.
//
// # Chunked uploads
//
// Besides native multipart uploads the client supports a chunked protocol in
// which every chunk is an ordinary object:
//
//	id := minio.NewChunkUploadID()
//	for i, chunk := range chunks { // any order, any process
//		_, err := client.UploadChunk(ctx, "uploads", id, i, bytes.NewReader(chunk), int64(len(chunk)))
//	}
//	info, err := client.MergeChunks(ctx, "uploads", "video.mp4", id)
//
// MergeChunks orders chunks by their numeric index, refuses gaps with
// objectstore.ErrMissingChunk and composes them server side. Every chunk but
// the last must be at least MinChunkSize. UploadChunks does all of this for a
// single reader with bounded concurrency.
//
// # Presigned URLs
//
// PresignGet and PresignPut default to 30 and 5 minutes. With
// Presigned.BaseURL set, the URL's scheme and host are replaced, e.g. to route
// downloads through a CDN.
//
// # Dependency injection
//
//	fx.New(
//		fx.Supply(cfg),
//		logger.FXModule,
//		minio.FXModule,
//	)
//
// The client is provided as *MinioClient and as objectstore.Store tagged
// name:"minio".
package minio
