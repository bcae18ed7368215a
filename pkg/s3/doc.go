/*
Package s3 implements objectstore.Store for AWS S3 and S3-compatible services
using aws-sdk-go-v2.

Endpoint, credentials and region come from Config; the ambient AWS credential
chain is not used. Path-style addressing is on by default so the same client
works against MinIO, LocalStack and Ceph.

	client, err := s3.NewClient(ctx, cfg, log, nil)
	if err != nil {
	    return err
	}
	req, err := client.PresignPut(ctx, "uploads", "avatar.png", 0)

Single-request uploads and multipart parts are staged in pooled buffers so the
SDK can sign the payload. PutFile streams from disk instead.

Native multipart uploads share the semantics of the MinIO adapter: part numbers
are assigned by the client, completion submits the recorded manifest and abort
always forgets the id locally.
*/
package s3
