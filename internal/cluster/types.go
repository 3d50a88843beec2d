package cluster

import (
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// ControlPlaneLabel selects the control-plane nodes of a cluster
const ControlPlaneLabel = "node-role.kubernetes.io/control-plane"

// Client bundles the API clients for the local cluster
type Client struct {
	// Name is the minikube profile
	Name string

	// Context is the kubeconfig context name
	Context string

	// Clientset is the typed Kubernetes client
	Clientset kubernetes.Interface

	// Dynamic serves resources without generated types, such as Argo CD Applications
	Dynamic dynamic.Interface

	// Mapper resolves manifest kinds to API resources
	Mapper meta.RESTMapper

	// RestConfig is the underlying REST configuration
	RestConfig *rest.Config

	// Healthy indicates if the last health check passed
	Healthy bool
}

// TaintResult describes what TaintControlPlane did to one node
type TaintResult struct {
	Node string

	// Changed is false when the node already carried the taint
	Changed bool
}
