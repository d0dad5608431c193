package dschema

func NewCache(base *Schema) *Cache {
	return &Cache{
		base:    base,
		derived: map[uint32]*Schema{},
	}
}

func (c *Cache) Base() *Schema {
	return c.base
}

// For returns the schema adjusted for a file version, deriving it on first use.
func (c *Cache) For(version uint32) *Schema {
	c.mutex.RLock()
	schema, ok := c.derived[version]
	c.mutex.RUnlock()
	if ok {
		return schema
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if schema, ok := c.derived[version]; ok {
		return schema
	}
	schema = c.base.adjusted(version)
	c.derived[version] = schema
	return schema
}

// Prepopulate derives the schemas of the given versions up front.
func (c *Cache) Prepopulate(versions ...uint32) {
	for _, version := range versions {
		c.For(version)
	}
}

func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.derived)
}
