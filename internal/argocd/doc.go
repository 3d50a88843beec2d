// Package argocd drives Argo CD Applications through the Kubernetes API.
//
// Applications are handled as unstructured objects with the dynamic client.
// A sync is requested by merge-patching the Application's operation field,
// which is what the argocd CLI does; automated sync is expected to be off.
package argocd
