package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/toolmarketplace/server/internal/models"
)

const ProductIndex = "products"

// Indexer keeps the product search index in step with the catalog.
type Indexer struct {
	ES        *elasticsearch.Client
	IndexName string
}

func (ix *Indexer) Index(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}

	res, err := ix.ES.Index(
		ix.IndexName,
		bytes.NewReader(data),
		ix.ES.Index.WithDocumentID(strconv.FormatUint(uint64(product.ID), 10)),
		ix.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (ix *Indexer) Delete(ctx context.Context, productID uint) error {
	res, err := ix.ES.Delete(
		ix.IndexName,
		strconv.FormatUint(uint64(productID), 10),
		ix.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description", "brand", "category"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("es search: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	products := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		products[i] = hit.Source
	}
	return r.Hits.Total.Value, products, nil
}
