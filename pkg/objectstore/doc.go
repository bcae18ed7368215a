/*
Package objectstore defines the storage surface shared by the MinIO and S3 adapters.

It holds no network code. It contains the Store interface, the value types the
adapters return, connection settings, the error taxonomy and the process-local
registry that backs native multipart uploads.

# Store and Bucket

Every Store method takes an explicit bucket. The Bucket handle binds one bucket
name and forwards each call unchanged:

	store, _ := minio.NewClient(cfg, log, nil)
	files := objectstore.DefaultBucket(store)
	_, err := files.PutBytes(ctx, "reports/2024.csv", data)

# Multipart uploads

Native multipart uploads are tracked by a PartRegistry. The store assigns part
numbers itself, so a caller only supplies the data:

	id, _ := store.BeginMultipart(ctx, "videos", "intro.mp4")
	for _, chunk := range chunks {
		if _, err := store.UploadPart(ctx, "videos", "intro.mp4", id, bytes.NewReader(chunk), int64(len(chunk))); err != nil {
			_ = store.AbortMultipart(ctx, "videos", "intro.mp4", id)
			return err
		}
	}
	info, err := store.CompleteMultipart(ctx, "videos", "intro.mp4", id)

Upload ids are only known to the process that began them. Completing or
aborting forgets the id; later calls with it return ErrUnknownUpload.

# Errors

Failed remote calls are returned as *OperationError, which matches
ErrOperationFailed under errors.Is and unwraps to the SDK error. Local checks
return the other sentinels directly.
*/
package objectstore
