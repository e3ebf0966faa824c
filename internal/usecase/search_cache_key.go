package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

const jobsListKeyPrefix = "jobs:list:"

type jobListCacheKeyInput struct {
	CategoryID   string `json:"category_id"`
	Difficulty   string `json:"difficulty"`
	RequiredTier string `json:"required_tier"`
	MaxTier      string `json:"max_tier"`
	Search       string `json:"search"`
	Limit        int    `json:"limit"`
	Offset       int    `json:"offset"`
}

func normalizeSearchValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// JobsListCacheKey hashes the normalized filter so equivalent queries share
// an entry. MaxTier is part of the key because it changes the result set.
func JobsListCacheKey(params JobListParams, maxTier string) string {
	in := jobListCacheKeyInput{
		Difficulty:   normalizeSearchValue(params.Difficulty),
		RequiredTier: normalizeSearchValue(params.RequiredTier),
		MaxTier:      maxTier,
		Search:       normalizeSearchValue(params.Search),
		Limit:        params.Limit,
		Offset:       params.Offset,
	}
	if params.CategoryID != nil {
		in.CategoryID = params.CategoryID.String()
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return jobsListKeyPrefix + hex.EncodeToString(sum[:])
}

func JobsListLockKey(listKey string) string {
	return "jobs:lock:" + strings.TrimPrefix(strings.TrimSpace(listKey), jobsListKeyPrefix)
}
