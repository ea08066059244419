package domain

type Message struct {
	Key   []byte
	Value []byte
}
