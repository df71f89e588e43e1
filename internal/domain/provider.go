package domain

import "context"

type CollectiveService interface {
	ListCollectives(ctx context.Context) ([]string, error)

	ListCollectiveEmojis(ctx context.Context) (map[string]string, error)

	FetchCollectivesWithPages(ctx context.Context) (CollectivePages, error)

	GetMarkdownFile(ctx context.Context, path string) (string, error)

	SaveMarkdownFile(ctx context.Context, path string, content string) error

	DeleteMarkdownFiles(ctx context.Context, paths []string) error

	ListUsersAndGroups(ctx context.Context, limit int) (UsersAndGroups, error)

	CreateCollective(ctx context.Context, title, emoji string, users, groups []string) (int, error)
}

type TokenService interface {
	AcquireToken(ctx context.Context, server, username, password string) (string, error)

	RevokeToken(ctx context.Context, cred Credential)
}
