// Package config defines the wizcli configuration.
//
// The file lives at ~/.wizcli/cli.yaml by default:
//
//	account_server: https://as.wiz.cn/
//	output: table
//	timeout: 30s
//	log_level: warn
//	data_dir: /home/me/.wizcli
//	tls:
//	  ca_file: /etc/ssl/wiz-ca.pem
//	sync:
//	  max_pages: 1000
//	  page_rate: 5
//	session:
//	  idle_timeout: 15m
//
// Every key can be overridden with a WIZCLI_ environment variable, using
// "__" between sections (WIZCLI_SYNC__MAX_PAGES).
package config
