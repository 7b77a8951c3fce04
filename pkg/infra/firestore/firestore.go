package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/m-mizutani/tagwatch/pkg/domain/interfaces"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

const (
	collectionRepositories = "repositories"
	collectionTags         = "tags"
)

// Database implements interfaces.Database on Firestore
type Database struct {
	client *firestore.Client
	prefix string
}

var _ interfaces.Database = (*Database)(nil)

type repositoryDoc struct {
	Repository types.RepoKey `firestore:"repository"`
	CreatedAt  time.Time     `firestore:"created_at"`
}

// Option is a functional option for Database
type Option func(*Database)

// WithCollectionPrefix prefixes collection names, e.g. to isolate test runs
func WithCollectionPrefix(prefix string) Option {
	return func(d *Database) {
		d.prefix = prefix
	}
}

// New connects to the Firestore database of the project
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Database, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID),
		)
	}

	d := &Database{client: client}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Close closes the underlying client
func (d *Database) Close() error {
	return d.client.Close()
}

// docID maps "owner/name" to a valid document ID, "/" is not allowed in IDs
func docID(repo types.RepoKey) string {
	return repo.Owner() + ":" + repo.Name()
}

func (d *Database) collection(name string) *firestore.CollectionRef {
	return d.client.Collection(d.prefix + name)
}

// ListRepositories implements interfaces.RepositoryRegistry
func (d *Database) ListRepositories(ctx context.Context) ([]types.RepoKey, error) {
	iter := d.collection(collectionRepositories).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var repos []types.RepoKey
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate repositories")
		}

		var repo repositoryDoc
		if err := doc.DataTo(&repo); err != nil {
			return nil, goerr.Wrap(err, "failed to decode repository", goerr.V("doc_id", doc.Ref.ID))
		}
		repos = append(repos, repo.Repository)
	}

	return repos, nil
}

// AddRepository implements interfaces.RepositoryRegistry
func (d *Database) AddRepository(ctx context.Context, repo types.RepoKey) (bool, error) {
	ref := d.collection(collectionRepositories).Doc(docID(repo))

	_, err := ref.Create(ctx, &repositoryDoc{
		Repository: repo,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to create repository", goerr.V("repository", repo))
	}

	return true, nil
}

// ListTags implements interfaces.HistoryStore
func (d *Database) ListTags(ctx context.Context) ([]*model.TagRecord, error) {
	iter := d.collection(collectionTags).Documents(ctx)
	defer iter.Stop()

	var tags []*model.TagRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tags")
		}

		var rec model.TagRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, goerr.Wrap(err, "failed to decode tag", goerr.V("doc_id", doc.Ref.ID))
		}
		tags = append(tags, &rec)
	}

	return tags, nil
}

// GetTag implements interfaces.HistoryStore
func (d *Database) GetTag(ctx context.Context, repo types.RepoKey) (*model.TagRecord, error) {
	doc, err := d.collection(collectionTags).Doc(docID(repo)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get tag", goerr.V("repository", repo))
	}

	var rec model.TagRecord
	if err := doc.DataTo(&rec); err != nil {
		return nil, goerr.Wrap(err, "failed to decode tag", goerr.V("repository", repo))
	}
	return &rec, nil
}

// PutTags implements interfaces.HistoryStore in one transaction
func (d *Database) PutTags(ctx context.Context, tags []*model.TagRecord) error {
	if len(tags) == 0 {
		return nil
	}

	err := d.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, tag := range tags {
			ref := d.collection(collectionTags).Doc(docID(tag.Repository))
			if err := tx.Set(ref, tag); err != nil {
				return goerr.Wrap(err, "failed to set tag", goerr.V("repository", tag.Repository))
			}
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to commit tags", goerr.V("count", len(tags)))
	}

	return nil
}
