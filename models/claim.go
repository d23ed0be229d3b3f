package models

import "time"

// ClaimedAuthor ist die Aussage eines Nutzers, dass ein OpenAlex-Autor er
// selbst ist.
type ClaimedAuthor struct {
	ORCID       string    `json:"-" gorm:"column:orcid;primaryKey;size:19"`
	AuthorID    string    `json:"author_id" gorm:"primaryKey;size:32"`
	DisplayName *string   `json:"display_name,omitempty"`
	Verified    bool      `json:"verified" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ClaimedAuthor) TableName() string { return "claimed_authors" }

// MergedClaim verknüpft zwei OpenAlex-Autoren unter dem Claim eines Nutzers.
type MergedClaim struct {
	ORCID           string    `json:"-" gorm:"column:orcid;primaryKey;size:19"`
	PrimaryAuthorID string    `json:"primary_author_id" gorm:"primaryKey;size:32"`
	MergedAuthorID  string    `json:"merged_author_id" gorm:"primaryKey;size:32"`
	CreatedAt       time.Time `json:"created_at"`
}

func (MergedClaim) TableName() string { return "merged_claims" }
