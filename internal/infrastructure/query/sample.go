package query

import "fmt"

const sampleListSize = 3

// Sampler generates placeholder data shaped like a query's result. Leaf
// values are "<name>_<n>" with n increasing across the sampler's lifetime.
type Sampler struct {
	counter int
}

func NewSampler() *Sampler {
	return &Sampler{}
}

func (s *Sampler) Sample(root *Node) map[string]any {
	return s.container(root)
}

func (s *Sampler) container(node *Node) map[string]any {
	result := make(map[string]any, len(node.Children))
	for _, child := range node.Children {
		switch child.Kind {
		case KindFieldList:
			items := make([]any, 0, sampleListSize)
			for i := 0; i < sampleListSize; i++ {
				items = append(items, s.leaf(child))
			}
			result[child.Name] = items
		case KindContainerList:
			items := make([]any, 0, sampleListSize)
			for i := 0; i < sampleListSize; i++ {
				items = append(items, s.container(child))
			}
			result[child.Name] = items
		case KindContainer:
			result[child.Name] = s.container(child)
		default:
			result[child.Name] = s.leaf(child)
		}
	}
	return result
}

func (s *Sampler) leaf(node *Node) string {
	v := fmt.Sprintf("%s_%d", node.Name, s.counter)
	s.counter++
	return v
}

// Sample parses q and returns one sample result for it.
func Sample(q string) (map[string]any, error) {
	root, err := Parse(q)
	if err != nil {
		return nil, err
	}
	return NewSampler().Sample(root), nil
}
