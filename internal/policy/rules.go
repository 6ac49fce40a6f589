package policy

// CanManageCatalog covers titles, categories and genres: anyone reads,
// only admins write.
func CanManageCatalog(a *Actor, act Action) bool {
	return IsSafe(act) || HasTier(a, TierAdmin)
}

// CanWriteAuthored covers reviews and comments.  Reads are public and any
// authenticated user may create; changing an existing entry needs
// authorship or the moderator tier.
func CanWriteAuthored(a *Actor, act Action, authorID uint64) bool {
	switch act {
	case ActionRead:
		return true
	case ActionCreate:
		return IsAuthenticated(a)
	}
	return IsAuthor(a, authorID) || HasTier(a, TierModerator)
}

// PreservedRole returns the role a self-profile update must keep,
// whatever the request body asked for.
func PreservedRole(a *Actor) string {
	return a.Role
}
