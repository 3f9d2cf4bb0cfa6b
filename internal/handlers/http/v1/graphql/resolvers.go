package graphql

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/gfdmit/web-forum/blog-service/internal/handlers/http/httperr"
	"github.com/gfdmit/web-forum/blog-service/internal/repository"
	"github.com/gfdmit/web-forum/blog-service/internal/service"
)

func getLatestPostQuery(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			post, err := gh.svc.GetLatestPost(p.Context)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, gh.publicError(err)
			}
			return post, nil
		},
	}
}

func getPostsQuery(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(postType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			posts, err := gh.svc.GetPosts(p.Context)
			if err != nil {
				return nil, gh.publicError(err)
			}
			return posts, nil
		},
	}
}

func createPostMutation(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(graphql.NewInputObject(
					graphql.InputObjectConfig{
						Name: "CreatePostInput",
						Fields: graphql.InputObjectConfigFieldMap{
							"name":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
							"content":    &graphql.InputObjectFieldConfig{Type: graphql.String},
							"coverImage": &graphql.InputObjectFieldConfig{Type: graphql.String},
						},
					},
				)),
			},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			input := p.Args["input"].(map[string]interface{})
			post, err := gh.svc.CreatePost(
				p.Context,
				input["name"].(string),
				optionalString(input, "content"),
				optionalString(input, "coverImage"),
			)
			if err != nil {
				return nil, gh.publicError(err)
			}
			return post, nil
		},
	}
}

func submitPostMutation(gh *gqlHandler, postType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(graphql.NewInputObject(
					graphql.InputObjectConfig{
						Name: "SubmitPostInput",
						Fields: graphql.InputObjectConfigFieldMap{
							"name":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
							"content":   &graphql.InputObjectFieldConfig{Type: graphql.String},
							"image":     &graphql.InputObjectFieldConfig{Type: graphql.String, Description: "base64 encoded file"},
							"imageName": &graphql.InputObjectFieldConfig{Type: graphql.String},
						},
					},
				)),
			},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			input := p.Args["input"].(map[string]interface{})
			in := service.SubmitInput{
				Name:    input["name"].(string),
				Content: optionalString(input, "content"),
			}
			if encoded := optionalString(input, "image"); encoded != nil {
				data, err := base64.StdEncoding.DecodeString(*encoded)
				if err != nil {
					return nil, gh.publicError(fmt.Errorf("%w: image is not valid base64", service.ErrInvalidInput))
				}
				in.Image = data
				if name := optionalString(input, "imageName"); name != nil {
					in.ImageName = *name
				}
			}
			post, err := gh.svc.Submit(p.Context, in)
			if err != nil {
				return nil, gh.publicError(err)
			}
			return post, nil
		},
	}
}

func uploadFileMutation(gh *gqlHandler, uploadResultType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: uploadResultType,
		Args: graphql.FieldConfigArgument{
			"file":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String), Description: "base64 encoded file"},
			"fileName": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			url, err := gh.svc.UploadFile(p.Context, p.Args["file"].(string), p.Args["fileName"].(string))
			if err != nil {
				return nil, gh.publicError(err)
			}
			return map[string]interface{}{"url": url}, nil
		},
	}
}

func optionalString(input map[string]interface{}, key string) *string {
	v, ok := input[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// publicError hides storage details from clients and logs them instead.
func (gh *gqlHandler) publicError(err error) error {
	if httperr.Status(err) == http.StatusInternalServerError {
		gh.logger.Error("graphql resolver failed", zap.Error(err))
	}
	return errors.New(httperr.Message(err))
}
