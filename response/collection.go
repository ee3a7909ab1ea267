package response

// CollectionResponse wraps one page of a listing. Count is the size of the
// page; the size of the whole listing is in Pagination.Total.
type CollectionResponse[T any] struct {
	Items      []T         `json:"items"`
	Count      int         `json:"count"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func NewCollectionResponse[T any](items []T, pagination *Pagination) CollectionResponse[T] {
	if items == nil {
		items = []T{}
	}

	return CollectionResponse[T]{
		Items:      items,
		Count:      len(items),
		Pagination: pagination,
	}
}
