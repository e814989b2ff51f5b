package dto

// PaginationInfo is rendered under every paginated list.
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	HasPrev     bool  `json:"hasPrev"`
	HasNext     bool  `json:"hasNext"`
	PrevPage    int   `json:"prevPage"`
	NextPage    int   `json:"nextPage"`
}
