// Package manifest discovers, decodes and server-side applies Kubernetes
// manifests. Objects are applied through the dynamic client after their kind
// is resolved with a REST mapper, so custom resources such as Argo CD
// AppProjects and Applications need no generated types.
package manifest
