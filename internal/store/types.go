package store

import "time"

// Post is a published post with its engagement counters.
type Post struct {
	ID            string    `json:"id"`
	Caption       string    `json:"caption"`
	ContentType   string    `json:"content_type"` // post, reel, story, carousel
	PostedAt      time.Time `json:"posted_at"`
	Likes         int       `json:"likes"`
	CommentsCount int       `json:"comments_count"`
	Shares        int       `json:"shares"`
	Reach         int       `json:"reach"`
	Impressions   int       `json:"impressions"`
}

// Engagement is the sum of interactions on a post.
func (p *Post) Engagement() int {
	return p.Likes + p.CommentsCount + p.Shares
}

// Comment is an audience comment. Answered tracks whether the owner
// (or the agent on their behalf) has replied.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Answered  bool      `json:"answered"`
}

// Topic is an owner-maintained content topic.
type Topic struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MediaAsset is an entry in the media library. IdentityDescriptor is
// the "visual DNA": a free-text physical description derived offline
// that biases image generation toward likeness preservation.
type MediaAsset struct {
	ID                 string    `json:"id"`
	URL                string    `json:"url"`
	Tags               []string  `json:"tags,omitempty"`
	AITags             []string  `json:"ai_tags,omitempty"`
	Mood               string    `json:"mood,omitempty"`
	IsSelfie           bool      `json:"is_selfie"`
	IsGoodReference    bool      `json:"is_good_reference"`
	Analyzed           bool      `json:"analyzed"`
	IdentityDescriptor string    `json:"identity_descriptor,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// DayStat is one day of account-level stats.
type DayStat struct {
	Day          string `json:"day"` // YYYY-MM-DD
	Followers    int    `json:"followers"`
	Following    int    `json:"following"`
	PostsCount   int    `json:"posts_count"`
	Reach        int    `json:"reach"`
	Impressions  int    `json:"impressions"`
	ProfileViews int    `json:"profile_views"`
}

// ContentPlan is a draft created by the plan_post tool. Approval and
// rejection happen outside this service.
type ContentPlan struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	Caption      string     `json:"caption,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	ConceptNote  string     `json:"concept_note,omitempty"`
	ContentType  string     `json:"content_type"`
	CreatedAt    time.Time  `json:"created_at"`
}

// MediaFilter selects media assets. Zero values mean "no constraint".
type MediaFilter struct {
	OnlySelfies       bool
	OnlyGoodReference bool
	Tags              []string // match any tag, in tags or ai_tags
	Mood              string
	Limit             int
}
