package snapshot_test

import (
	"testing"

	"github.com/myrjola/formtree/internal/formtree"
	"github.com/myrjola/formtree/internal/models"
	"github.com/myrjola/formtree/internal/snapshot"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    models.Tree
		wantErr error
	}{
		{
			name: "short answer question",
			data: `[{"id":"1","text":"Name?","type":"short","answer":null,"children":[]}]`,
			want: models.Tree{{ID: "1", Text: "Name?", Type: models.TypeShortAnswer, Children: []models.QuestionNode{}}},
		},
		{
			name: "nested boolean",
			data: `[{"id":"1","text":"Drive?","type":"boolean","answer":true,"children":[
				{"id":"2","text":"Car?","type":"short","answer":null,"children":null}]}]`,
			want: models.Tree{{
				ID: "1", Text: "Drive?", Type: models.TypeBoolean, Answer: models.AnswerTrue,
				Children: []models.QuestionNode{{ID: "2", Text: "Car?", Type: models.TypeShortAnswer,
					Children: []models.QuestionNode{}}},
			}},
		},
		{
			name: "missing optional fields",
			data: `[{"id":"1"}]`,
			want: models.Tree{{ID: "1", Children: []models.QuestionNode{}}},
		},
		{name: "empty array", data: `[]`, want: models.Tree{}},
		{name: "object", data: `{"id":"1"}`, wantErr: snapshot.ErrNotArray},
		{name: "null", data: `null`, wantErr: snapshot.ErrNotArray},
		{name: "string", data: `"[]"`, wantErr: snapshot.ErrNotArray},
		{name: "not json", data: `[{`, wantErr: snapshot.ErrMalformed},
		{name: "empty input", data: ``, wantErr: snapshot.ErrMalformed},
		{name: "array of numbers", data: `[1,2]`, wantErr: snapshot.ErrMalformed},
		{name: "missing id", data: `[{"text":"x"}]`, wantErr: snapshot.ErrMalformed},
		{name: "empty id", data: `[{"id":""}]`, wantErr: snapshot.ErrMalformed},
		{name: "numeric id", data: `[{"id":1}]`, wantErr: snapshot.ErrMalformed},
		{name: "unknown type", data: `[{"id":"1","type":"multiple"}]`, wantErr: snapshot.ErrMalformed},
		{name: "string answer", data: `[{"id":"1","type":"boolean","answer":"yes"}]`, wantErr: snapshot.ErrMalformed},
		{name: "children object", data: `[{"id":"1","children":{}}]`, wantErr: snapshot.ErrMalformed},
		{
			name:    "malformed grandchild",
			data:    `[{"id":"1","children":[{"id":"2","children":[{"id":"3","text":false}]}]}]`,
			wantErr: snapshot.ErrMalformed,
		},
		{
			name:    "duplicate ids across depths",
			data:    `[{"id":"1","children":[{"id":"1"}]}]`,
			wantErr: formtree.ErrDuplicateID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := snapshot.Decode([]byte(tt.data))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, snapshot.ErrMalformed)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEncode(t *testing.T) {
	data, err := snapshot.Encode(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))

	tree := models.Tree{
		{ID: "1", Text: "Drive?", Type: models.TypeBoolean, Answer: models.AnswerTrue, Children: []models.QuestionNode{
			{ID: "2", Text: "Car?", Type: models.TypeShortAnswer, Children: []models.QuestionNode{}},
		}},
		{ID: "3", Type: models.TypeBoolean, Answer: models.AnswerFalse, Children: []models.QuestionNode{}},
	}
	data, err = snapshot.Encode(tree)
	require.NoError(t, err)
	decoded, err := snapshot.Decode(data)
	require.NoError(t, err)
	require.Equal(t, tree, decoded)
}
