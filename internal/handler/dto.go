package handler

const (
	minTitleLength   = 1
	maxTitleLength   = 200
	maxContentLength = 10000
)

type createStoryRequest struct {
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content" binding:"required"`
	Characters string `json:"characters" binding:"required"`
}

type addTurnRequest struct {
	CharacterID string `json:"characterId" binding:"required"`
	Content     string `json:"content" binding:"required"`
}

type addCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type toggleUpvoteResponse struct {
	Upvoted bool `json:"upvoted"`
}

type newerStoriesResponse struct {
	Data  interface{} `json:"data"`
	Count int         `json:"count"`
}
