//go:generate mockgen -source=../client.go -destination=./mock_reader.go -package=mocks

package mocks
