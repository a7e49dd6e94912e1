// Package publisher persists generated documentation bundles and serves
// their files back, independent of the storage medium.
//
// A Publisher is built once at startup by FromConfig from the techdocs
// configuration block. The publisher type selects one of the registered
// backends:
//
//	local      files under a directory on this host (publisher/local)
//	googleGcs  objects in a Google Cloud Storage bucket (publisher/gcs)
//	awsS3      objects in an Amazon S3 bucket (publisher/s3)
//
// Backend packages register themselves in init, so a binary imports the
// ones it supports:
//
//	import (
//	    _ "github.com/kbukum/techdocs/publisher/gcs"
//	    _ "github.com/kbukum/techdocs/publisher/local"
//	    _ "github.com/kbukum/techdocs/publisher/s3"
//	)
//
//	pub, err := publisher.FromConfig(ctx, cfg, publisher.Deps{Logger: log})
//
// Every backend stores an entity's files under the key prefix
// "<entityKey>/". Publishing is not atomic for readers: a concurrent Fetch
// or ListFiles may observe a partially published bundle.
package publisher
