package graphql

import (
	"time"

	"github.com/graphql-go/graphql"
)

var DateTime = graphql.NewScalar(
	graphql.ScalarConfig{
		Name:        "DateTime",
		Description: "DateTime scalar type",
		Serialize: func(value interface{}) interface{} {
			switch v := value.(type) {
			case time.Time:
				return v.Format(time.RFC3339)
			case *time.Time:
				if v == nil {
					return nil
				}
				return v.Format(time.RFC3339)
			default:
				return nil
			}
		},
	},
)

func (gh *gqlHandler) initSchema() error {
	postType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Post",
			Fields: graphql.Fields{
				"id":         &graphql.Field{Type: graphql.ID},
				"name":       &graphql.Field{Type: graphql.String},
				"content":    &graphql.Field{Type: graphql.String},
				"coverImage": &graphql.Field{Type: graphql.String},
				"createdAt":  &graphql.Field{Type: DateTime},
				"updatedAt":  &graphql.Field{Type: DateTime},
			},
		},
	)

	uploadResultType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "UploadResult",
			Fields: graphql.Fields{
				"url": &graphql.Field{Type: graphql.String},
			},
		},
	)

	queryType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"latestPost": getLatestPostQuery(gh, postType),
				"posts":      getPostsQuery(gh, postType),
			},
		},
	)

	mutationType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Mutation",
			Fields: graphql.Fields{
				"createPost": createPostMutation(gh, postType),
				"submitPost": submitPostMutation(gh, postType),
				"uploadFile": uploadFileMutation(gh, uploadResultType),
			},
		},
	)

	schemaConfig := graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	}

	schema, err := graphql.NewSchema(schemaConfig)
	if err != nil {
		return err
	}
	gh.schema = schema

	return nil
}
