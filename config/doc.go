// Package config loads the techdocs configuration.
//
// Values come from a YAML file (an explicit path, $TECHDOCS_CONFIG or the
// first of techdocs.yml, config.yml, config/config.yml, ...), an optional
// .env file and the process environment. An environment variable overrides
// the key whose dotted path it spells once separators are dropped, so
// TECHDOCS_PUBLISHER_TYPE=awsS3 sets techdocs.publisher.type and
// TECHDOCS_REQUEST_URL sets techdocs.requestUrl.
//
//	cfg, err := config.Load("config.yml")
package config
