// Package validation derives node status and workflow readiness from a flow.
//
// Everything here is a pure function of its inputs. Problems with the user's
// configuration are returned as data; Go errors are reserved for malformed
// schema references.
package validation
