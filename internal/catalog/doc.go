// Package catalog loads the YAML service catalog and infers the dependency
// relation the analyzer works on.
//
// A catalog lists services, optionally with explicit dependencies, plus a
// table of pattern rules for the services that declare none:
//
//	services:
//	  - name: authentication-service
//	  - name: billing-service
//	    dependsOn: [authentication-service]
//	  - name: edge-gateway
//	rules:
//	  - match: "*-gateway"
//	    dependsOn: [authentication-service]
//	config:
//	  appId: payments
//	  baseUrl: https://api.example.com
//
// Store serves the parsed catalog as a dependency.Provider and Watcher keeps
// it in sync with the file on disk.
package catalog
