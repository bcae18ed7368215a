/*
Package config loads the object store configuration with viper.

Every setting has a default in its struct tag and can be overridden by an
optional objectstore.yaml, a .env file and environment variables prefixed with
OBJECTSTORE_. Nested keys join with underscores:

	OBJECTSTORE_MINIO_STORE_ENDPOINT_URL=http://minio:9000
	OBJECTSTORE_MINIO_STORE_DEFAULT_BUCKET=uploads
	OBJECTSTORE_S3_ENABLED=true
	OBJECTSTORE_S3_PRESIGNED_PUT_EXPIRY=10m

Load validates every enabled backend and fails before any client is built.
*/
package config
