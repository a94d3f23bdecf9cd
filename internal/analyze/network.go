package analyze

import (
	"cmp"
	"slices"

	"github.com/matthieukhl/orderdesk/internal/models"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// CustomerLink connects two customers who bought at least one common
// product. CustomerA is always the lower id.
type CustomerLink struct {
	CustomerA int64   `json:"customer_a" yaml:"customer_a"`
	NameA     string  `json:"name_a" yaml:"name_a"`
	CustomerB int64   `json:"customer_b" yaml:"customer_b"`
	NameB     string  `json:"name_b" yaml:"name_b"`
	Weight    int     `json:"weight" yaml:"weight"`
	Products  []int64 `json:"products" yaml:"products"`
}

type customerPair struct{ a, b int64 }

// Product nodes share the id space with customer nodes, so they are stored
// negated. Record ids are always positive.
func productNode(id int64) simple.Node { return simple.Node(-id) }

func isProduct(n graph.Node) bool { return n.ID() < 0 }

// CustomerNetwork builds the shared-purchase graph. Weight is the number of
// distinct products both customers bought. Links are sorted by weight
// descending, then by the customer pair.
func CustomerNetwork(ds Dataset) []CustomerLink {
	names := customerNames(ds.Customers)

	// Bipartite graph of who bought what.
	purchases := simple.NewUndirectedGraph()
	for _, o := range ds.Orders {
		if !counted(o) {
			continue
		}
		customer := simple.Node(o.CustomerID)
		for _, id := range o.ProductIDs() {
			purchases.SetEdge(purchases.NewEdge(customer, productNode(id)))
		}
	}

	common := make(map[customerPair][]int64)
	nodes := purchases.Nodes()
	for nodes.Next() {
		product := nodes.Node()
		if !isProduct(product) {
			continue
		}
		buyers := graph.NodesOf(purchases.From(product.ID()))
		ids := make([]int64, len(buyers))
		for i, n := range buyers {
			ids[i] = n.ID()
		}
		slices.Sort(ids)
		for i, a := range ids {
			for _, b := range ids[i+1:] {
				key := customerPair{a, b}
				common[key] = append(common[key], -product.ID())
			}
		}
	}

	network := simple.NewWeightedUndirectedGraph(0, 0)
	for pair, products := range common {
		network.SetWeightedEdge(network.NewWeightedEdge(
			simple.Node(pair.a), simple.Node(pair.b), float64(len(products))))
	}

	links := []CustomerLink{}
	edges := network.WeightedEdges()
	for edges.Next() {
		e := edges.WeightedEdge()
		a, b := e.From().ID(), e.To().ID()
		if a > b {
			a, b = b, a
		}
		products := common[customerPair{a, b}]
		slices.Sort(products)
		links = append(links, CustomerLink{
			CustomerA: a,
			NameA:     nameOr(names, models.EntityCustomer, a),
			CustomerB: b,
			NameB:     nameOr(names, models.EntityCustomer, b),
			Weight:    int(e.Weight()),
			Products:  products,
		})
	}

	slices.SortFunc(links, func(x, y CustomerLink) int {
		return cmpOr(
			cmp.Compare(y.Weight, x.Weight),
			cmp.Compare(x.CustomerA, y.CustomerA),
			cmp.Compare(x.CustomerB, y.CustomerB),
		)
	})
	return links
}
